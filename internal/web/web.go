package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"eventdesk/internal/catalog"
	"eventdesk/internal/config"
	"eventdesk/internal/lifecycle"
	appLog "eventdesk/internal/log"
)

const (
	listCacheTTL    = 30 * time.Second
	listCacheMax    = 128
	shutdownTimeout = 5 * time.Second
)

// Server exposes the event catalog over HTTP.
type Server struct {
	cfg        *config.Config
	cat        *catalog.Catalog
	refresher  *catalog.Refresher
	classifier lifecycle.Classifier
	mux        *http.ServeMux

	// Listing responses keyed by query; dropped on every refresh and
	// whenever the calendar day changes. Searches are not cached.
	listMu    sync.RWMutex
	listCache map[string]listCacheEntry
}

type listCacheEntry struct {
	page      catalog.Page
	updatedAt time.Time
}

// NewServer constructs a Server. refresher may be nil, in which case
// POST /api/refresh answers 503.
func NewServer(cfg *config.Config, cat *catalog.Catalog, refresher *catalog.Refresher, cl lifecycle.Classifier) *Server {
	s := &Server{
		cfg:        cfg,
		cat:        cat,
		refresher:  refresher,
		classifier: cl,
		mux:        http.NewServeMux(),
		listCache:  make(map[string]listCacheEntry),
	}
	if refresher != nil {
		refresher.OnRefresh(s.invalidate)
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen, "basic_auth", s.basicAuthEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/events/{id}", s.handleEvent)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth instead of locking everyone out.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware protects every route except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="eventdesk", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleEvents lists classified events.
//
// GET /api/events?tab=Live&q=cardio&page=1&page_size=10
//   - tab:       Running, Live, Past, Draft, All or Trash (default Live)
//   - q:         case-insensitive name substring
//   - page:      1-based page number
//   - page_size: defaults to the configured page size
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	tab, err := catalog.ParseTab(qs.Get("tab"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := catalog.Query{
		Tab:      tab,
		Search:   qs.Get("q"),
		Page:     parseIntDefault(qs.Get("page"), 1),
		PageSize: parseIntDefault(qs.Get("page_size"), s.cfg.PageSize),
	}

	today := s.classifier.Today()
	key := today.String() + "|" + string(q.Tab) + "|" + q.Search + "|" + strconv.Itoa(q.Page) + "|" + strconv.Itoa(q.PageSize)

	cacheable := q.Search == ""
	if cacheable {
		s.listMu.RLock()
		entry, ok := s.listCache[key]
		s.listMu.RUnlock()
		if ok && time.Since(entry.updatedAt) < listCacheTTL {
			writeJSON(w, http.StatusOK, entry.page)
			return
		}
	}

	page := s.cat.List(q, s.classifier)

	if cacheable {
		s.storeListing(key, page)
	}

	appLog.Debug("api events", "tab", q.Tab, "q", q.Search, "page", q.Page, "total", page.Total)
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.cat.Get(r.PathValue("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	state := s.classifier.Classify(ev.StartDate, ev.EndDate, ev.Draft)
	writeJSON(w, http.StatusOK, catalog.Classified{Event: ev, State: state, Label: state.Label()})
}

type statusResponse struct {
	Start string          `json:"start"`
	End   string          `json:"end"`
	Draft bool            `json:"draft"`
	Today string          `json:"today"`
	State lifecycle.State `json:"state"`
	Label string          `json:"label"`
}

// handleStatus classifies an arbitrary date pair.
//
// GET /api/status?start=15/08/2025&end=20/08/2025&draft=false&today=16/08/2025
// Unparseable dates classify as Draft; only a bad draft or today value is
// rejected.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	draft := false
	if v := qs.Get("draft"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "draft must be a boolean")
			return
		}
		draft = b
	}

	cl := s.classifier
	if v := qs.Get("today"); v != "" {
		p := lifecycle.ParseInputIn(v, cl.Location())
		if !p.OK {
			writeError(w, http.StatusBadRequest, "today is not a date")
			return
		}
		cl = cl.At(p.Instant)
	}

	start, end := qs.Get("start"), qs.Get("end")
	state := cl.Classify(start, end, draft)
	writeJSON(w, http.StatusOK, statusResponse{
		Start: start,
		End:   end,
		Draft: draft,
		Today: cl.Today().String(),
		State: state,
		Label: state.Label(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh not configured")
		return
	}
	type refreshResponse struct {
		Events int    `json:"events"`
		Error  string `json:"error,omitempty"`
	}
	resp := refreshResponse{}
	if err := s.refresher.Run(r.Context()); err != nil {
		resp.Error = err.Error()
	}
	resp.Events = s.cat.Len()
	writeJSON(w, http.StatusOK, resp)
}

// storeListing caches page under key, first evicting expired entries. When
// the cache is still full the page is not stored.
func (s *Server) storeListing(key string, page catalog.Page) {
	now := time.Now()
	s.listMu.Lock()
	defer s.listMu.Unlock()
	if len(s.listCache) >= listCacheMax {
		for k, e := range s.listCache {
			if now.Sub(e.updatedAt) >= listCacheTTL {
				delete(s.listCache, k)
			}
		}
	}
	if _, ok := s.listCache[key]; !ok && len(s.listCache) >= listCacheMax {
		return
	}
	s.listCache[key] = listCacheEntry{page: page, updatedAt: now}
}

func (s *Server) invalidate() {
	s.listMu.Lock()
	clear(s.listCache)
	s.listMu.Unlock()
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
