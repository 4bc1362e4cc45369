package journal

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/fxjournal/journal-api/internal/stats"
	"github.com/fxjournal/journal-api/internal/types"
	"github.com/fxjournal/journal-api/pkg/response"
)

var ErrTradeNotFound = errors.New("trade not found")

// serverOwnedFields are assigned by the backend and stripped from any
// incoming update payload.
var serverOwnedFields = []string{"id", "_id", "createdAt", "updatedAt"}

// Service handles trade record CRUD and the derived aggregates.
type Service struct {
	db *Database
}

// NewService creates a new journal service with the given database connection.
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// CreateTrade validates a creation payload, assigns the server-owned identity
// and timestamps, and persists the record.
func (s *Service) CreateTrade(payload []byte) (*types.Trade, error) {
	if err := ValidateCreate(payload); err != nil {
		return nil, err
	}

	var trade types.Trade
	if err := json.Unmarshal(payload, &trade); err != nil {
		return nil, err
	}

	trade.TradeID = uuid.New().String()
	trade.CreatedAt = time.Now()
	trade.UpdatedAt = time.Now()

	if err := s.db.CreateTrade(&trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

// ListTrades returns the collection narrowed by filter and ordered by key.
// The zero filter with the default key returns everything, newest first.
func (s *Service) ListTrades(filter Filter, key SortKey) ([]types.Trade, error) {
	trades, err := s.db.ListTrades()
	if err != nil {
		return nil, err
	}
	return Sort(filter.Apply(trades), key), nil
}

// GetTrade retrieves a single trade by its ID. Returns nil when absent.
func (s *Service) GetTrade(tradeID string) (*types.Trade, error) {
	return s.db.GetTrade(tradeID)
}

// UpdateTrade applies a partial payload to an existing record. Server-owned
// fields are stripped before validation; identity and the creation timestamp
// never change.
func (s *Service) UpdateTrade(tradeID string, payload []byte) (*types.Trade, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	for _, k := range serverOwnedFields {
		delete(fields, k)
	}
	stripped, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	if err := ValidateUpdate(stripped); err != nil {
		return nil, err
	}

	trade, err := s.db.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, ErrTradeNotFound
	}

	// Merge the edited fields over the stored record.
	if err := json.Unmarshal(stripped, trade); err != nil {
		return nil, err
	}
	trade.TradeID = tradeID
	trade.UpdatedAt = time.Now()

	if err := s.db.UpdateTrade(trade); err != nil {
		return nil, err
	}
	return trade, nil
}

// DeleteTrade removes a trade by its ID.
func (s *Service) DeleteTrade(tradeID string) error {
	removed, err := s.db.DeleteTrade(tradeID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrTradeNotFound
	}
	return nil
}

// Stats derives the aggregate win/loss figures over the full collection.
func (s *Service) Stats() (stats.Stats, error) {
	trades, err := s.db.ListTrades()
	if err != nil {
		return stats.Stats{}, err
	}
	return stats.Compute(trades), nil
}

// GinHandlers contains HTTP handlers for the journal endpoints.
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for the journal endpoints.
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateTradeHandler handles POST requests to record a new trade.
// Request body carries the trade fields minus the identifier.
func (h *GinHandlers) CreateTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := c.GetRawData()
		if err != nil {
			response.BadRequest(c, "failed to read request body")
			return
		}

		trade, err := h.service.CreateTrade(payload)
		if err != nil {
			var verrs ValidationErrors
			if errors.As(err, &verrs) {
				response.ValidationFailed(c, verrs)
				return
			}
			response.InternalError(c, err.Error())
			return
		}

		log.Info().Str("trade_id", trade.TradeID).Str("pair", trade.Pair).Msg("Trade recorded")
		response.Success(c, trade)
	}
}

// ListTradesHandler handles GET requests for the trade collection.
// Filter and sort parameters are optional; an unset parameter matches
// everything.
func (h *GinHandlers) ListTradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := filterFromQuery(c)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		trades, err := h.service.ListTrades(filter, SortKey(c.Query("sort")))
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, trades)
	}
}

// GetTradeHandler handles GET requests for a single trade.
// URL parameter: trade_id
func (h *GinHandlers) GetTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tradeID := c.Param("trade_id")
		trade, err := h.service.GetTrade(tradeID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if trade == nil {
			response.NotFound(c, "Trade not found")
			return
		}
		response.Success(c, trade)
	}
}

// UpdateTradeHandler handles PATCH requests carrying a subset of editable
// fields. URL parameter: trade_id
func (h *GinHandlers) UpdateTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tradeID := c.Param("trade_id")
		if tradeID == "" {
			response.BadRequest(c, "Trade ID is required")
			return
		}

		payload, err := c.GetRawData()
		if err != nil {
			response.BadRequest(c, "failed to read request body")
			return
		}

		trade, err := h.service.UpdateTrade(tradeID, payload)
		if err != nil {
			var verrs ValidationErrors
			switch {
			case errors.As(err, &verrs):
				response.ValidationFailed(c, verrs)
			case errors.Is(err, ErrTradeNotFound):
				response.NotFound(c, "Trade not found")
			default:
				response.InternalError(c, err.Error())
			}
			return
		}

		log.Info().Str("trade_id", trade.TradeID).Msg("Trade updated")
		response.Success(c, trade)
	}
}

// DeleteTradeHandler handles DELETE requests. Resolves with no payload.
// URL parameter: trade_id
func (h *GinHandlers) DeleteTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tradeID := c.Param("trade_id")
		if tradeID == "" {
			response.BadRequest(c, "Trade ID is required")
			return
		}

		if err := h.service.DeleteTrade(tradeID); err != nil {
			if errors.Is(err, ErrTradeNotFound) {
				response.NotFound(c, "Trade not found")
				return
			}
			response.InternalError(c, err.Error())
			return
		}

		log.Info().Str("trade_id", tradeID).Msg("Trade deleted")
		c.Status(http.StatusNoContent)
	}
}

// StatsHandler handles GET requests for the aggregate win/loss figures.
func (h *GinHandlers) StatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agg, err := h.service.Stats()
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		response.Success(c, agg.Response())
	}
}

// filterFromQuery builds a Filter from the optional list query parameters.
// Dates accept RFC 3339 timestamps or plain YYYY-MM-DD.
func filterFromQuery(c *gin.Context) (Filter, error) {
	filter := Filter{
		Session:   c.Query("session"),
		Pair:      c.Query("pair"),
		TradeType: c.Query("trade_type"),
		Result:    c.Query("result"),
	}

	parse := func(raw string) (*time.Time, error) {
		if raw == "" {
			return nil, nil
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return &t, nil
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, errors.New("invalid date parameter: " + raw)
		}
		return &t, nil
	}

	var err error
	if filter.From, err = parse(c.Query("from")); err != nil {
		return Filter{}, err
	}
	if filter.To, err = parse(c.Query("to")); err != nil {
		return Filter{}, err
	}
	return filter, nil
}
