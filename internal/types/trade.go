package types

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Trade is one logged trading decision together with its outcome and the
// context it was taken in. TradeID is assigned by the server on creation and
// never changes afterwards.
type Trade struct {
	gorm.Model     `json:"-"`
	TradeID        string    `gorm:"uniqueIndex" json:"id"`
	Date           time.Time `json:"date"`
	Session        string    `json:"session"`
	Pair           string    `json:"pair"`
	TrendMain      string    `json:"trendMain"`
	TrendSecondary string    `json:"trendSecondary"`
	TFBlock        string    `json:"tfBlock"` // higher timeframe set
	TFEntry        string    `json:"tfEntry"` // lower timeframe set
	TradeType      string    `json:"tradeType"`
	Result         string    `json:"result"`
	RR             string    `json:"rr,omitempty"` // free text, conventionally "A:B"
	Notes          string    `json:"notes,omitempty"`
	ScreenshotURL  string    `json:"screenshotUrl,omitempty"`
	ScreenshotID   string    `json:"screenshotId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Semantic values for trade type and result. Stored values may additionally
// carry a display decoration ("TP ✅"); classification goes by prefix so both
// forms interoperate.
const (
	TradeTypeLong  = "Long"
	TradeTypeShort = "Short"

	ResultTakeProfit = "TP"
	ResultStopLoss   = "SL"
)

// Closed value sets for the enum-valued fields. Decorated forms are listed
// alongside the plain ones because persisted data from older clients carries
// the glyphs inline.
var (
	Sessions         = []string{"London", "New York"}
	Pairs            = []string{"EUR-USD", "GBP-USD"}
	Trends           = []string{"Uptrend", "Downtrend"}
	HigherTimeframes = []string{"4H", "1H", "30m", "15m"}
	LowerTimeframes  = []string{"15m", "5m", "3m", "1m"}
	TradeTypes       = []string{TradeTypeLong, TradeTypeShort, tradeTypeLabels[TradeTypeLong], tradeTypeLabels[TradeTypeShort]}
	Results          = []string{ResultTakeProfit, ResultStopLoss, resultLabels[ResultTakeProfit], resultLabels[ResultStopLoss]}
)

var tradeTypeLabels = map[string]string{
	TradeTypeLong:  "Long 🟢",
	TradeTypeShort: "Short 🔴",
}

var resultLabels = map[string]string{
	ResultTakeProfit: "TP ✅",
	ResultStopLoss:   "SL ❌",
}

// TradeTypeLabel returns the decorated display form of a trade type. Already
// decorated or unknown values pass through unchanged.
func TradeTypeLabel(t string) string {
	if label, ok := tradeTypeLabels[t]; ok {
		return label
	}
	return t
}

// ResultLabel returns the decorated display form of a result.
func ResultLabel(r string) string {
	if label, ok := resultLabels[r]; ok {
		return label
	}
	return r
}

// IsWin reports whether a stored result value classifies as a take-profit.
func IsWin(result string) bool {
	return strings.HasPrefix(result, ResultTakeProfit)
}

// IsLoss reports whether a stored result value classifies as a stop-loss.
func IsLoss(result string) bool {
	return strings.HasPrefix(result, ResultStopLoss)
}

// IsLong reports whether a stored trade type classifies as a long entry.
func IsLong(tradeType string) bool {
	return strings.HasPrefix(tradeType, TradeTypeLong)
}

// IsShort reports whether a stored trade type classifies as a short entry.
func IsShort(tradeType string) bool {
	return strings.HasPrefix(tradeType, TradeTypeShort)
}

// UnmarshalJSON accepts the historical names for the screenshot reference
// (imageUrl, and the nested image.secureUrl/image.publicId shape) in addition
// to the canonical screenshotUrl/screenshotId. Only the canonical names are
// ever written back out.
func (t *Trade) UnmarshalJSON(data []byte) error {
	type alias Trade
	aux := struct {
		*alias
		ImageURL string `json:"imageUrl"`
		Image    *struct {
			SecureURL string `json:"secureUrl"`
			PublicID  string `json:"publicId"`
		} `json:"image"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if t.ScreenshotURL == "" {
		switch {
		case aux.ImageURL != "":
			t.ScreenshotURL = aux.ImageURL
		case aux.Image != nil:
			t.ScreenshotURL = aux.Image.SecureURL
		}
	}
	if t.ScreenshotID == "" && aux.Image != nil {
		t.ScreenshotID = aux.Image.PublicID
	}
	return nil
}
