package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fxjournal/journal-api/internal/auth"
	"github.com/fxjournal/journal-api/internal/config"
	"github.com/fxjournal/journal-api/internal/database"
	"github.com/fxjournal/journal-api/internal/journal"
	"github.com/fxjournal/journal-api/internal/settings"
	"github.com/fxjournal/journal-api/internal/types"
	"github.com/fxjournal/journal-api/internal/uploads"
	"github.com/fxjournal/journal-api/pkg/client"
	"github.com/fxjournal/journal-api/pkg/middleware"
)

const (
	serverAddress = "http://localhost:4000"
	mediaAddress  = "http://localhost:4001"
	numTrades     = 25

	simAPIKey    = "sim-api-key"
	simAPISecret = "sim-api-secret"
)

var rrValues = []string{"1:2", "1:3", "2:1", "3:2", "", "abc"}

// init configures the logger for the simulation with pretty printing
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

func main() {
	if err := startServer(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start journal server")
	}
	startMediaStub()

	api := client.New(serverAddress, log.Logger)
	api.SetMediaUploadURL(mediaAddress + "/image/upload")

	if err := waitReady(api); err != nil {
		log.Fatal().Err(err).Msg("Server never became ready")
	}

	ctx := context.Background()
	if err := api.Authenticate(ctx, simAPIKey, simAPISecret); err != nil {
		log.Fatal().Err(err).Msg("Failed to authenticate")
	}

	// Form flow: an invalid submission must fail with a field message and
	// write nothing.
	if _, err := api.CreateTrade(ctx, randomTrade(func(r *client.CreateTradeRequest) {
		r.Pair = ""
	})); err == nil {
		log.Fatal().Msg("Expected validation failure for missing pair")
	} else {
		log.Info().Str("error", err.Error()).Msg("Validation rejected incomplete form")
	}

	created := seedTrades(ctx, api)

	// History flow: fetch everything, derive filtered and sorted views
	// locally the way the history page does.
	trades, err := api.ListTrades(ctx, client.ListOptions{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list trades")
	}

	londonWins := journal.Filter{Session: "London", Result: types.ResultLabel(types.ResultTakeProfit)}.Apply(trades)
	byRR := journal.Sort(trades, journal.SortRRDesc)
	byOutcome := journal.Sort(trades, journal.SortResult)
	log.Info().
		Int("total", len(trades)).
		Int("london_wins", len(londonWins)).
		Str("best_rr", byRR[0].RR).
		Str("first_outcome", byOutcome[0].Result).
		Msg("Derived history views")

	// Inline edit flow: replace the screenshot in place, then patch fields.
	editing := created[0]
	shot, err := api.UploadScreenshot(ctx, bytes.NewReader(testImage(1600, 900)), "entry.png", client.UploadOptions{
		PublicID:   "trades/" + editing.TradeID,
		Overwrite:  true,
		Invalidate: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to upload screenshot")
	}

	updated, err := api.UpdateTrade(ctx, editing.TradeID, map[string]interface{}{
		"notes":         "Re-checked the entry after close",
		"rr":            "2:1",
		"screenshotUrl": shot.SecureURL,
		"screenshotId":  shot.PublicID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to update trade")
	}
	log.Info().
		Str("trade_id", updated.TradeID).
		Str("screenshot_id", updated.ScreenshotID).
		Msg("Trade edited with replacement screenshot")

	// Delete flow: confirmed backend delete, then optimistic local removal.
	victim := created[len(created)-1]
	if err := api.DeleteTrade(ctx, victim.TradeID); err != nil {
		log.Fatal().Err(err).Msg("Failed to delete trade")
	}
	trades = removeByID(trades, victim.TradeID)
	trades = removeByID(trades, victim.TradeID) // absent id: no-op
	log.Info().Str("trade_id", victim.TradeID).Int("remaining", len(trades)).Msg("Trade deleted")

	// Header refresh after the delete completes.
	aggregates, err := api.GetStats(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch stats")
	}

	printSummary(trades, aggregates)
}

// seedTrades runs the creation form flow numTrades times.
func seedTrades(ctx context.Context, api *client.Client) []types.Trade {
	created := make([]types.Trade, 0, numTrades)
	for i := 0; i < numTrades; i++ {
		trade, err := api.CreateTrade(ctx, randomTrade(nil))
		if err != nil {
			log.Error().Err(err).Msg("Failed to create trade")
			continue
		}
		created = append(created, *trade)
		log.Info().
			Str("trade_id", trade.TradeID).
			Str("pair", trade.Pair).
			Str("result", trade.Result).
			Msg("Trade recorded")
	}
	return created
}

func randomTrade(mutate func(*client.CreateTradeRequest)) client.CreateTradeRequest {
	req := client.CreateTradeRequest{
		Date:           time.Now().AddDate(0, 0, -rand.Intn(90)),
		Session:        types.Sessions[rand.Intn(len(types.Sessions))],
		Pair:           types.Pairs[rand.Intn(len(types.Pairs))],
		TrendMain:      types.Trends[rand.Intn(len(types.Trends))],
		TrendSecondary: types.Trends[rand.Intn(len(types.Trends))],
		TFBlock:        types.HigherTimeframes[rand.Intn(len(types.HigherTimeframes))],
		TFEntry:        types.LowerTimeframes[rand.Intn(len(types.LowerTimeframes))],
		TradeType:      types.TradeTypeLabel([]string{types.TradeTypeLong, types.TradeTypeShort}[rand.Intn(2)]),
		Result:         types.ResultLabel([]string{types.ResultTakeProfit, types.ResultStopLoss}[rand.Intn(2)]),
		RR:             rrValues[rand.Intn(len(rrValues))],
	}
	if mutate != nil {
		mutate(&req)
	}
	return req
}

// removeByID drops one trade from the local slice; absent ids are a no-op.
func removeByID(trades []types.Trade, tradeID string) []types.Trade {
	out := trades[:0]
	for _, t := range trades {
		if t.TradeID != tradeID {
			out = append(out, t)
		}
	}
	return out
}

// testImage renders a flat PNG of the given size for the upload flow.
func testImage(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.White)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func waitReady(api *client.Client) error {
	for i := 0; i < 50; i++ {
		if _, err := api.GetStats(context.Background()); err == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for %s", serverAddress)
}

func printSummary(trades []types.Trade, aggregates types.StatsResponse) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("JOURNAL SIMULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf(`
Trades in history: %d
Wins:              %d
Losses:            %d
Total recorded:    %d
Win rate:          %d%%

Pair distribution
-----------------
`, len(trades), aggregates.Wins, aggregates.Losses, aggregates.Total, aggregates.WinRate)

	pairs := map[string]int{}
	for _, t := range trades {
		pairs[t.Pair]++
	}
	for pair, count := range pairs {
		fmt.Printf("%-8s: %s (%d)\n", pair, strings.Repeat("#", count), count)
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
}

// startServer wires the journal API in-process the same way cmd/server does.
func startServer() error {
	gin.SetMode(gin.ReleaseMode)

	db, err := database.NewDatabase("file::memory:?cache=shared")
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	authService := auth.NewService("simulation-secret")
	authService.RegisterAPICredentials(simAPIKey, simAPISecret)
	journalService := journal.NewService(db)
	uploadService := uploads.NewService(config.Media{
		CloudName: "sim-cloud",
		APIKey:    "media-key",
		APISecret: "media-secret",
		Folder:    "trades",
	})
	themeStore, err := settings.NewStore("simulation-settings.json", nil)
	if err != nil {
		return err
	}

	router := gin.New()
	router.Use(middleware.CORS())

	authHandlers := auth.NewGinHandlers(authService)
	journalHandlers := journal.NewGinHandlers(journalService)
	uploadHandlers := uploads.NewGinHandlers(uploadService)
	settingsHandlers := settings.NewGinHandlers(themeStore)

	api := router.Group("/api")
	api.POST("/auth/token", authHandlers.GenerateTokenHandler())

	trades := api.Group("/trades")
	trades.GET("", journalHandlers.ListTradesHandler())
	trades.GET("/stats", journalHandlers.StatsHandler())
	trades.GET("/:trade_id", journalHandlers.GetTradeHandler())

	protected := trades.Group("")
	protected.Use(middleware.JWTAuth("simulation-secret"))
	protected.POST("", journalHandlers.CreateTradeHandler())
	protected.GET("/signature", uploadHandlers.SignatureHandler())
	protected.PATCH("/:trade_id", journalHandlers.UpdateTradeHandler())
	protected.DELETE("/:trade_id", journalHandlers.DeleteTradeHandler())

	api.GET("/settings/theme", settingsHandlers.GetThemeHandler())
	api.PUT("/settings/theme", settingsHandlers.SetThemeHandler())

	go func() {
		if err := router.Run(":4000"); err != nil {
			log.Fatal().Err(err).Msg("journal server stopped")
		}
	}()
	return nil
}

// startMediaStub stands in for the external media host: it accepts the
// multipart upload and answers with a hosted URL and public id.
func startMediaStub() {
	mux := http.NewServeMux()
	mux.HandleFunc("/image/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error":{"message":"invalid multipart body"}}`)
			return
		}
		publicID := r.FormValue("public_id")
		if publicID == "" {
			publicID = fmt.Sprintf("trades/sim-%d", time.Now().UnixNano())
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"secure_url":"https://media.example/%s.jpg","public_id":"%s","format":"jpg"}`, publicID, publicID)
	})

	go func() {
		if err := http.ListenAndServe(":4001", mux); err != nil {
			log.Fatal().Err(err).Msg("media stub stopped")
		}
	}()
}
