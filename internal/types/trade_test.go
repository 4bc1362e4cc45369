package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalCanonicalImageFields(t *testing.T) {
	var trade Trade
	require.NoError(t, json.Unmarshal([]byte(
		`{"id":"t1","screenshotUrl":"https://media.example/a.jpg","screenshotId":"trades/a"}`,
	), &trade))

	assert.Equal(t, "t1", trade.TradeID)
	assert.Equal(t, "https://media.example/a.jpg", trade.ScreenshotURL)
	assert.Equal(t, "trades/a", trade.ScreenshotID)
}

func TestUnmarshalLegacyImageURL(t *testing.T) {
	var trade Trade
	require.NoError(t, json.Unmarshal([]byte(
		`{"id":"t2","imageUrl":"https://media.example/b.jpg"}`,
	), &trade))

	assert.Equal(t, "https://media.example/b.jpg", trade.ScreenshotURL)
}

func TestUnmarshalLegacyNestedImage(t *testing.T) {
	var trade Trade
	require.NoError(t, json.Unmarshal([]byte(
		`{"id":"t3","image":{"secureUrl":"https://media.example/c.jpg","publicId":"trades/c"}}`,
	), &trade))

	assert.Equal(t, "https://media.example/c.jpg", trade.ScreenshotURL)
	assert.Equal(t, "trades/c", trade.ScreenshotID)
}

func TestUnmarshalCanonicalWinsOverLegacy(t *testing.T) {
	var trade Trade
	require.NoError(t, json.Unmarshal([]byte(
		`{"screenshotUrl":"https://media.example/new.jpg","imageUrl":"https://media.example/old.jpg"}`,
	), &trade))

	assert.Equal(t, "https://media.example/new.jpg", trade.ScreenshotURL)
}

func TestMarshalEmitsOnlyCanonicalNames(t *testing.T) {
	raw, err := json.Marshal(Trade{TradeID: "t4", ScreenshotURL: "https://media.example/d.jpg"})
	require.NoError(t, err)

	assert.Contains(t, string(raw), "screenshotUrl")
	assert.NotContains(t, string(raw), "imageUrl")
	assert.NotContains(t, string(raw), `"image"`)
}

func TestResultClassificationByPrefix(t *testing.T) {
	assert.True(t, IsWin("TP ✅"))
	assert.True(t, IsWin("TP"))
	assert.True(t, IsLoss("SL ❌"))
	assert.False(t, IsWin("SL ❌"))
	assert.False(t, IsWin("BE"))
	assert.False(t, IsLoss("BE"))
}

func TestTradeTypeClassificationByPrefix(t *testing.T) {
	assert.True(t, IsLong("Long 🟢"))
	assert.True(t, IsShort("Short"))
	assert.False(t, IsLong("Short 🔴"))
}

func TestDecorationMapping(t *testing.T) {
	assert.Equal(t, "TP ✅", ResultLabel(ResultTakeProfit))
	assert.Equal(t, "SL ❌", ResultLabel(ResultStopLoss))
	assert.Equal(t, "Long 🟢", TradeTypeLabel(TradeTypeLong))
	// decorated and unknown values pass through
	assert.Equal(t, "TP ✅", ResultLabel("TP ✅"))
	assert.Equal(t, "BE", ResultLabel("BE"))
}
