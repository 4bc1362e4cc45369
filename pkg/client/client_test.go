package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return New(server.URL, zerolog.Nop()), server
}

func sampleRequest() CreateTradeRequest {
	return CreateTradeRequest{
		Date:           time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Session:        "London",
		Pair:           "EUR-USD",
		TrendMain:      "Uptrend",
		TrendSecondary: "Uptrend",
		TFBlock:        "1H",
		TFEntry:        "5m",
		TradeType:      "Long 🟢",
		Result:         "TP ✅",
		RR:             "1:2",
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"api.example.com", "https://api.example.com"},
		{"api.example.com/", "https://api.example.com"},
		{"http://localhost:4000", "http://localhost:4000"},
		{"HTTPS://api.example.com//", "HTTPS://api.example.com"},
		{"https://api.example.com/base///", "https://api.example.com/base"},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeBaseURL(tc.raw))
		})
	}
}

func TestCreateTrade(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/trades", r.URL.Path)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "EUR-USD", body["pair"])
			_, hasNotes := body["notes"]
			assert.False(t, hasNotes, "blank optional fields must be omitted")

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"t1","pair":"EUR-USD","result":"TP ✅"}}`))
		})

		c, server := newTestClient(handler)
		defer server.Close()

		trade, err := c.CreateTrade(context.Background(), sampleRequest())
		require.NoError(t, err)
		assert.Equal(t, "t1", trade.TradeID)
		assert.Equal(t, "EUR-USD", trade.Pair)
	})

	t.Run("ServerMessageSurfaced", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"message":"pair: pair is required"}`))
		})

		c, server := newTestClient(handler)
		defer server.Close()

		_, err := c.CreateTrade(context.Background(), sampleRequest())
		require.Error(t, err)
		assert.Equal(t, "pair: pair is required", err.Error())
	})

	t.Run("GenericFallbackMessage", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream exploded`))
		})

		c, server := newTestClient(handler)
		defer server.Close()

		_, err := c.CreateTrade(context.Background(), sampleRequest())
		require.Error(t, err)
		assert.Equal(t, "operation failed with status 502", err.Error())
	})
}

func TestListTrades(t *testing.T) {
	t.Run("All", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/trades", r.URL.Path)
			assert.Empty(t, r.URL.RawQuery)
			_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"a"},{"id":"b"}]}`))
		})

		c, server := newTestClient(handler)
		defer server.Close()

		trades, err := c.ListTrades(context.Background(), ListOptions{})
		require.NoError(t, err)
		require.Len(t, trades, 2)
		assert.Equal(t, "a", trades[0].TradeID)
	})

	t.Run("FilterAndSortParams", func(t *testing.T) {
		from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "London", q.Get("session"))
			assert.Equal(t, "rrDesc", q.Get("sort"))
			assert.Equal(t, from.Format(time.RFC3339), q.Get("from"))
			assert.Empty(t, q.Get("pair"))
			_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
		})

		c, server := newTestClient(handler)
		defer server.Close()

		_, err := c.ListTrades(context.Background(), ListOptions{
			Session: "London",
			Sort:    "rrDesc",
			From:    &from,
		})
		require.NoError(t, err)
	})

	t.Run("LegacyImageNamesNormalized", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"data":[
				{"id":"a","imageUrl":"https://media.example/old.jpg"},
				{"id":"b","image":{"secureUrl":"https://media.example/nested.jpg","publicId":"trades/b"}}
			]}`))
		})

		c, server := newTestClient(handler)
		defer server.Close()

		trades, err := c.ListTrades(context.Background(), ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, "https://media.example/old.jpg", trades[0].ScreenshotURL)
		assert.Equal(t, "https://media.example/nested.jpg", trades[1].ScreenshotURL)
		assert.Equal(t, "trades/b", trades[1].ScreenshotID)
	})
}

func TestUpdateTrade(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/trades/t1", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2:1", body["rr"])

		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"t1","rr":"2:1"}}`))
	})

	c, server := newTestClient(handler)
	defer server.Close()

	trade, err := c.UpdateTrade(context.Background(), "t1", map[string]interface{}{"rr": "2:1"})
	require.NoError(t, err)
	assert.Equal(t, "2:1", trade.RR)

	_, err = c.UpdateTrade(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestDeleteTrade(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/trades/t1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		c, server := newTestClient(handler)
		defer server.Close()

		assert.NoError(t, c.DeleteTrade(context.Background(), "t1"))
	})

	t.Run("EmptyIDNoRequest", func(t *testing.T) {
		called := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		c, server := newTestClient(handler)
		defer server.Close()

		assert.Error(t, c.DeleteTrade(context.Background(), ""))
		assert.False(t, called)
	})

	t.Run("NotFound", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"Trade not found"}`))
		})

		c, server := newTestClient(handler)
		defer server.Close()

		err := c.DeleteTrade(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, "Trade not found", err.Error())
	})
}

func TestGetStats(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/trades/stats", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"wins":2,"losses":1,"total":3,"winRate":67}}`))
	})

	c, server := newTestClient(handler)
	defer server.Close()

	stats, err := c.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 67, stats.WinRate)
}

func TestAuthenticateInstallsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "key", creds["api_key"])
		_, _ = w.Write([]byte(`{"success":true,"data":{"jwt_token":"tok-123"}}`))
	})
	mux.HandleFunc("/api/trades", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	})

	c, server := newTestClient(mux)
	defer server.Close()

	require.NoError(t, c.Authenticate(context.Background(), "key", "secret"))
	_, err := c.ListTrades(context.Background(), ListOptions{})
	require.NoError(t, err)
}

func TestGetUploadSignature(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "trades", q.Get("folder"))
		assert.Equal(t, "trades/t1", q.Get("public_id"))
		assert.Equal(t, "true", q.Get("overwrite"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"cloudName":"cn","apiKey":"ak","timestamp":1735000000,"folder":"trades","signature":"sig","publicId":"trades/t1","overwrite":true}}`))
	})

	c, server := newTestClient(handler)
	defer server.Close()

	sig, err := c.GetUploadSignature(context.Background(), SignatureParams{
		Folder:    "trades",
		PublicID:  "trades/t1",
		Overwrite: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "cn", sig.CloudName)
	assert.Equal(t, "sig", sig.Signature)
	assert.True(t, sig.Overwrite)
}
