package feed

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	commonhttp "github.com/AlibekovAA/snapfeed/internal/common/http"
	"github.com/AlibekovAA/snapfeed/internal/common/jwtverify"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
	"github.com/AlibekovAA/snapfeed/internal/post/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"formatTime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}).ParseFS(templateFS, "templates/*.html"))

// FeedLister is the read side of the post service.
type FeedLister interface {
	ListFeed(ctx context.Context) ([]domain.FeedItem, error)
}

type Config struct {
	Posts          FeedLister
	Hub            *Hub
	Verifier       *jwtverify.Verifier
	Log            *logger.Logger
	GoogleEnabled  bool
	RequestTimeout time.Duration
}

type Handler struct {
	posts          FeedLister
	hub            *Hub
	verifier       *jwtverify.Verifier
	errors         *commonhttp.ErrorHandler
	log            *logger.Logger
	googleEnabled  bool
	requestTimeout time.Duration
	upgrader       gorillaWS.Upgrader
}

func NewHandler(cfg Config) *Handler {
	return &Handler{
		posts:          cfg.Posts,
		hub:            cfg.Hub,
		verifier:       cfg.Verifier,
		errors:         commonhttp.NewErrorHandler(cfg.Log),
		log:            cfg.Log,
		googleEnabled:  cfg.GoogleEnabled,
		requestTimeout: cfg.RequestTimeout,
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin,
		},
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /{$}", h.verifier.Optional(http.HandlerFunc(h.feedPage)))
	mux.Handle("GET /signin", h.verifier.Optional(http.HandlerFunc(h.signinPage)))
	mux.Handle("GET /ws/feed", h.verifier.Required(http.HandlerFunc(h.handleWebSocket)))
}

func (h *Handler) feedPage(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	items, err := h.posts.ListFeed(ctx)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.render(w, r, "feed.html", ComposePage(claims, items))
}

func (h *Handler) signinPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := jwtverify.FromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	callbackURL := r.URL.Query().Get("callbackUrl")
	if callbackURL == "" {
		callbackURL = "/"
	}
	h.render(w, r, "signin.html", SigninPage{
		Error:         signinErrorMessage(r.URL.Query().Get("error")),
		CallbackURL:   callbackURL,
		GoogleEnabled: h.googleEnabled,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"template": name,
			"action":   "render_failed",
		}).Errorf("render failed: %v", err)
		h.errors.HandleError(w, r, err)
		return
	}
	metrics.FeedPageRenders.WithLabelValues(name).Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, _ := jwtverify.FromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.FeedWebSocketErrors.WithLabelValues("upgrade").Inc()
		h.log.WithFields(r.Context(), logger.Fields{
			"user_id": claims.UserID,
			"action":  "feed_ws_upgrade_failed",
		}).Warnf("feed websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, claims.UserID, claims.Username, h.log)
	if !h.hub.Register(client) {
		_ = conn.WriteControl(gorillaWS.CloseMessage,
			gorillaWS.FormatCloseMessage(gorillaWS.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	client.Start()
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	return origin == "http://"+host || origin == "https://"+host
}
