// Package uploads issues signed upload tickets authorizing the client to
// push a file directly to the external media host. The backend never proxies
// the file itself; it only signs the parameter set.
package uploads

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fxjournal/journal-api/internal/config"
	"github.com/fxjournal/journal-api/internal/types"
	"github.com/fxjournal/journal-api/pkg/response"
)

// Service signs direct-upload parameter sets for the media host.
type Service struct {
	cloudName     string
	apiKey        string
	apiSecret     string
	defaultFolder string
	now           func() time.Time
}

// NewService creates a signing service from the media configuration.
func NewService(cfg config.Media) *Service {
	return &Service{
		cloudName:     cfg.CloudName,
		apiKey:        cfg.APIKey,
		apiSecret:     cfg.APISecret,
		defaultFolder: cfg.Folder,
		now:           time.Now,
	}
}

// TicketRequest carries the optional overwrite-targeting parameters. A zero
// PublicID means a fresh upload; a set one (with Overwrite/Invalidate)
// replaces the hosted asset in place.
type TicketRequest struct {
	Folder     string
	PublicID   string
	Overwrite  bool
	Invalidate bool
}

// Sign produces a ticket over the requested parameters. The timestamp is
// part of the signed set, which is what bounds the ticket's validity.
func (s *Service) Sign(req TicketRequest) types.SignatureResponse {
	folder := req.Folder
	if folder == "" {
		folder = s.defaultFolder
	}
	ts := s.now().Unix()

	params := map[string]string{
		"folder":    folder,
		"timestamp": strconv.FormatInt(ts, 10),
	}
	if req.PublicID != "" {
		params["public_id"] = req.PublicID
		params["overwrite"] = strconv.FormatBool(req.Overwrite)
		params["invalidate"] = strconv.FormatBool(req.Invalidate)
	}

	return types.SignatureResponse{
		CloudName:  s.cloudName,
		APIKey:     s.apiKey,
		Timestamp:  ts,
		Folder:     folder,
		Signature:  s.signature(params),
		PublicID:   req.PublicID,
		Overwrite:  req.PublicID != "" && req.Overwrite,
		Invalidate: req.PublicID != "" && req.Invalidate,
	}
}

// signature hashes the sorted parameter set plus the API secret, which is
// the media host's direct-upload signing scheme.
func (s *Service) signature(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	h := sha1.Sum([]byte(strings.Join(pairs, "&") + s.apiSecret))
	return hex.EncodeToString(h[:])
}

// GinHandlers contains HTTP handlers for the upload ticket endpoint.
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for upload tickets.
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// SignatureHandler handles GET requests for a signed upload ticket.
// Query parameters: folder, public_id, overwrite, invalidate.
func (h *GinHandlers) SignatureHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := TicketRequest{
			Folder:     c.Query("folder"),
			PublicID:   c.Query("public_id"),
			Overwrite:  queryBool(c, "overwrite"),
			Invalidate: queryBool(c, "invalidate"),
		}
		response.Success(c, h.service.Sign(req))
	}
}

func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
