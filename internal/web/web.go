package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"classclock/internal/config"
	"classclock/internal/display"
	"classclock/internal/ics"
	appLog "classclock/internal/log"
	"classclock/internal/source"
)

// Server provides the HTTP surface: the embedded countdown page plus JSON
// APIs for the current frame, the resolved schedule, and upcoming events.
type Server struct {
	cfg    *config.Config
	store  *source.Store
	holder *display.Holder
	prefs  *display.Prefs
	loc    *time.Location
	reload func(context.Context) error
	mux    *http.ServeMux

	// In-memory cache for /api/upcoming responses; the projection walks
	// the whole week and does not need to be recomputed per request.
	upcomingMu    sync.RWMutex
	upcomingCache *upcomingCache
}

// embeddedStatic contains the countdown page served at /.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, store *source.Store, holder *display.Holder, prefs *display.Prefs, loc *time.Location, reload func(context.Context) error) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		holder: holder,
		prefs:  prefs,
		loc:    loc,
		reload: reload,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. Empty
// credentials are treated as disabled.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
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
			w.Header().Set("WWW-Authenticate", `Basic realm="classclock", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/frame", s.handleFrame)
	s.mux.HandleFunc("/api/schedule", s.handleSchedule)
	s.mux.HandleFunc("/api/upcoming", s.handleUpcoming)
	s.mux.HandleFunc("/api/prefs", s.handlePrefs)
	s.mux.HandleFunc("/api/reload", s.handleReload)
	s.mux.HandleFunc("/calendar.ics", s.handleCalendar)
	s.mux.HandleFunc("/preview.png", s.handlePreview)

	// The embedded countdown page. All non-/api/* paths fall back here.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleFrame returns the current display frame.
//
// GET /api/frame?compact=1
//   - compact: overrides the server-side compact preference for this
//     response only. Without it the ticker's last-rendered frame is
//     served as-is.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if raw := q.Get("compact"); raw != "" {
		compact := raw == "1" || raw == "true"
		frame, err := display.Compute(s.store.Current(), time.Now().In(s.loc), compact)
		if err != nil {
			// Degraded frames are still rendered; just note why.
			appLog.Debug("api frame degraded", "reason", err.Error())
		}
		writeJSON(w, http.StatusOK, frame)
		return
	}

	writeJSON(w, http.StatusOK, s.holder.Latest())
}

// scheduleResponse is the JSON response shape for /api/schedule.
type scheduleResponse struct {
	Override      bool                     `json:"override"`
	LoadedAt      time.Time                `json:"loaded_at"`
	WeekStart     string                   `json:"week_start"`
	RegBlock      int                      `json:"reg_block"`
	LabBlock      int                      `json:"lab_block"`
	ShowTimeline  bool                     `json:"show_timeline"`
	SpecialActive bool                     `json:"special_sub_timer"`
	Days          map[string][]dayEventDTO `json:"days"`
	Banners       map[string]string        `json:"banners,omitempty"`
}

type dayEventDTO struct {
	Time  string `json:"time"`
	Event string `json:"event"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, _ *http.Request) {
	state := s.store.Current()
	if state == nil || state.Doc == nil {
		writeError(w, http.StatusServiceUnavailable, "no schedule loaded")
		return
	}

	meta := state.Meta()
	resp := scheduleResponse{
		Override:      state.Override,
		LoadedAt:      state.LoadedAt,
		WeekStart:     source.WeekStart(time.Now().In(s.loc)).Format("2006-01-02"),
		RegBlock:      meta.RegBlockMinutes(),
		LabBlock:      meta.LabBlockMinutes(),
		ShowTimeline:  meta.ShowTimelineEnabled(),
		SpecialActive: meta.SpecialSubTimerEnabled(),
		Days:          make(map[string][]dayEventDTO, len(state.Doc.Days)),
		Banners:       make(map[string]string),
	}

	for day, ds := range state.Doc.Days {
		events := make([]dayEventDTO, 0, len(ds.Events))
		for _, ev := range ds.Events {
			events = append(events, dayEventDTO{Time: ev.Time, Event: ev.Event})
		}
		resp.Days[day] = events
		if ds.BannerText != "" {
			resp.Banners[day] = ds.BannerText
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// upcomingResponse is the JSON response shape for /api/upcoming.
type upcomingResponse struct {
	Occurrences []ics.Occurrence `json:"occurrences"`
	Count       int              `json:"count"`
}

// upcomingCache holds a cached /api/upcoming response and its timestamp.
type upcomingCache struct {
	resp      upcomingResponse
	count     int
	updatedAt time.Time
}

// handleUpcoming lists the next N occurrences of the weekly schedule.
//
// GET /api/upcoming?count=10
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	count := parseIntDefault(r.URL.Query().Get("count"), 10)
	if count <= 0 {
		count = 10
	}
	if count > 50 {
		count = 50
	}

	const upcomingCacheTTL = 30 * time.Second
	now := time.Now().In(s.loc)

	s.upcomingMu.RLock()
	uc := s.upcomingCache
	s.upcomingMu.RUnlock()
	if uc != nil && uc.count == count && now.Sub(uc.updatedAt) < upcomingCacheTTL {
		writeJSON(w, http.StatusOK, uc.resp)
		return
	}

	occs, err := ics.ProjectUpcoming(s.store.Current(), now, count)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "no schedule loaded")
		return
	}

	resp := upcomingResponse{Occurrences: occs, Count: len(occs)}

	s.upcomingMu.Lock()
	s.upcomingCache = &upcomingCache{resp: resp, count: count, updatedAt: time.Now()}
	s.upcomingMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// prefsBody is the request/response shape for /api/prefs.
type prefsBody struct {
	Compact bool `json:"compact"`
}

// handlePrefs reads or updates the compact-display toggle the ticker
// consults once per tick.
func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, prefsBody{Compact: s.prefs.Compact()})
	case http.MethodPost:
		var body prefsBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		s.prefs.SetCompact(body.Compact)
		writeJSON(w, http.StatusOK, prefsBody{Compact: s.prefs.Compact()})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleReload triggers a full schedule reload through the loader, the
// same path the midnight cron takes.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.reload(r.Context()); err != nil {
		appLog.Error("api reload failed", err)
		writeError(w, http.StatusBadGateway, "reload failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleCalendar serves the current week as an iCalendar feed.
func (s *Server) handleCalendar(w http.ResponseWriter, _ *http.Request) {
	cal, err := ics.WeekCalendar(s.store.Current(), time.Now().In(s.loc))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "no schedule loaded")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(cal.Serialize()))
}

// handlePreview serves the last captured PNG snapshot from disk.
// http.ServeFile returns the right status for missing files.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.SnapshotPath)
}

// staticFileServer returns an http.Handler serving the embedded countdown
// page from internal/web/static.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /api/* never falls back to the static page; a missing API route
		// must 404 as an API, not serve HTML.
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
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
