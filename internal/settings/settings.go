// Package settings holds the client presentation preferences. The theme
// store is an explicit, injected object rather than process-global state;
// callers decide where it persists and what the system preference is.
package settings

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/fxjournal/journal-api/internal/types"
	"github.com/fxjournal/journal-api/pkg/response"
)

// Mode is the light/dark presentation preference.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

const themeKey = "ui-mode"

var ErrInvalidMode = errors.New("mode must be \"light\" or \"dark\"")

// Store is the persisted theme preference. Initialization order: persisted
// value if present and valid, else the injected system preference.
type Store struct {
	mu   sync.Mutex
	path string
	mode Mode
}

// NewStore loads the preference from path, falling back to systemPref. A nil
// systemPref defaults to light.
func NewStore(path string, systemPref func() Mode) (*Store, error) {
	s := &Store{path: path, mode: ModeLight}
	if systemPref != nil {
		if m := systemPref(); m == ModeLight || m == ModeDark {
			s.mode = m
		}
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var persisted map[string]Mode
		if err := json.Unmarshal(raw, &persisted); err != nil {
			return nil, err
		}
		if m := persisted[themeKey]; m == ModeLight || m == ModeDark {
			s.mode = m
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	return s, nil
}

// Mode returns the current preference.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Set stores and persists the preference.
func (s *Store) Set(m Mode) error {
	if m != ModeLight && m != ModeDark {
		return ErrInvalidMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	return s.persist()
}

// Toggle flips the preference and persists the new value.
func (s *Store) Toggle() (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeLight {
		s.mode = ModeDark
	} else {
		s.mode = ModeLight
	}
	return s.mode, s.persist()
}

// persist writes the preference file. Callers hold the lock.
func (s *Store) persist() error {
	raw, err := json.Marshal(map[string]Mode{themeKey: s.mode})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// GinHandlers contains HTTP handlers for the settings endpoints.
type GinHandlers struct {
	store *Store
}

// NewGinHandlers creates a new set of HTTP handlers for the settings endpoints.
func NewGinHandlers(store *Store) *GinHandlers {
	return &GinHandlers{
		store: store,
	}
}

// GetThemeHandler handles GET requests for the persisted theme preference.
func (h *GinHandlers) GetThemeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, types.ThemeResponse{Mode: string(h.store.Mode())})
	}
}

// SetThemeHandler handles PUT requests replacing the theme preference.
// Request body: {"mode": "light"|"dark"}.
func (h *GinHandlers) SetThemeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body types.ThemeResponse
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
		if err := h.store.Set(Mode(body.Mode)); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		response.Success(c, types.ThemeResponse{Mode: body.Mode})
	}
}
