package realtime

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/utils"
)

const readWait = 60 * time.Second

type Handler struct {
	manager  *Manager
	secret   string
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewHandler(manager *Manager, secret string, log *zap.Logger) *Handler {
	return &Handler{
		manager: manager,
		secret:  secret,
		log:     log.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// NewRouter serves the websocket endpoint on its own listener.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Authorization"},
		MaxAge:         300,
	}))
	r.Get("/ws", h.Serve)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

// Serve authenticates the handshake with an access token passed as the
// token query parameter or a bearer header, then joins the user's room.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		if v := r.Header.Get("Authorization"); len(v) > 7 && v[:7] == "Bearer " {
			raw = v[7:]
		}
	}
	claims, err := utils.ParseToken(h.secret, raw, utils.TokenAccess)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}
	c := h.manager.Add(claims.UserID, conn)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		c.touch()
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		c.touch()
	}
	h.manager.Remove(c)
}
