// Package server is the WebSocket transport. It upgrades HTTP connections,
// enforces origin and connection-limit policy, and runs one goroutine per
// connection that feeds frames to a session and writes the replies back as
// JSON messages.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/logger"
	"github.com/towerspire/server/internal/protocol"
	"github.com/towerspire/server/internal/rng"
	"github.com/towerspire/server/internal/session"
)

// Server accepts WebSocket connections and hosts one game session per
// connection.
type Server struct {
	cfg      *config.ServerConfig
	services session.Services

	limiter  *ConnLimiter
	throttle *LoginThrottle
	httpSrv  *http.Server

	mu        sync.Mutex
	conns     map[*websocket.Conn]struct{}
	startedAt time.Time
}

// New builds a server from the operational config and the shared game
// services.
func New(cfg *config.ServerConfig, services session.Services) *Server {
	return &Server{
		cfg:       cfg,
		services:  services,
		limiter:   NewConnLimiter(cfg.Connections),
		throttle:  NewLoginThrottle(cfg.RateLimit),
		conns:     make(map[*websocket.Conn]struct{}),
		startedAt: time.Now(),
	}
}

// Router returns the HTTP routes: the game socket and a health probe.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleSocket)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return r
}

// ListenAndServe blocks serving the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.Listen.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("server listening", "address", s.cfg.Listen.Addr())

	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and closes the live ones. Each
// connection goroutine autosaves its session on the way out.
func (s *Server) Shutdown(ctx context.Context) error {
	s.throttle.Stop()

	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	logger.Info("server shutdown complete")
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	total, ips := s.limiter.Stats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"connections":    total,
		"ips":            ips,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	})
}

// handleSocket upgrades one HTTP request to a WebSocket and hands it to a
// connection goroutine.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if !s.limiter.TryAcquire(ip) {
		logger.Warning("connection rejected, limit exceeded", "ip", ip, "remote_addr", r.RemoteAddr)
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("connection rejected, origin not allowed",
					"origin", origin, "host", r.Host, "ip", ip)
			}
			return allowed
		},
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.limiter.Release(ip)
		logger.Error("websocket upgrade failed", "ip", ip, "error", err)
		return
	}

	go s.serveConn(ws, ip, r.UserAgent())
}

// serveConn owns one connection: read a frame, run it through the session,
// write the replies in order. The session is single-threaded by
// construction since only this goroutine touches it.
func (s *Server) serveConn(ws *websocket.Conn, ip, userAgent string) {
	s.mu.Lock()
	s.conns[ws] = struct{}{}
	s.mu.Unlock()

	sess := session.New(s.services, rng.New(), ip, userAgent)

	defer func() {
		sess.OnDisconnect()
		s.mu.Lock()
		delete(s.conns, ws)
		s.mu.Unlock()
		s.limiter.Release(ip)
		ws.Close()
	}()

	if s.cfg.WebSocket.MaxMessageSize > 0 {
		ws.SetReadLimit(s.cfg.WebSocket.MaxMessageSize)
	}
	writer := newConn(ws, time.Duration(s.cfg.WebSocket.WriteTimeoutSeconds)*time.Second)

	logger.Info("client connected", "ip", ip)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Info("client connection dropped", "ip", ip, "error", err)
			}
			return
		}

		for _, msg := range s.dispatch(sess, ip, data) {
			if err := writer.WriteJSON(msg); err != nil {
				logger.Error("write failed", "ip", ip, "error", err)
				return
			}
		}
	}
}

// dispatch runs one frame through the session. Login frames additionally
// pass the per-IP throttle, which watches the reply to count failures.
func (s *Server) dispatch(sess *session.Session, ip string, data []byte) []any {
	msg, err := protocol.ParseInbound(data)
	if err != nil || msg.Type != "auth" || msg.Action != "login" {
		return sess.Handle(data)
	}

	if locked, wait := s.throttle.Locked(ip); locked {
		logger.Warning("login throttled", "ip", ip, "wait", wait)
		reason := fmt.Sprintf("尝试过于频繁，请 %d 秒后再试", int(wait.Seconds())+1)
		return []any{protocol.NewError(protocol.TypeAuthError, reason)}
	}

	out := sess.Handle(data)
	if loginRejected(out) {
		s.throttle.RecordFailure(ip)
	} else {
		s.throttle.RecordSuccess(ip)
	}
	return out
}

func loginRejected(out []any) bool {
	for _, msg := range out {
		if e, ok := msg.(protocol.Error); ok && e.Type == protocol.TypeAuthError {
			return true
		}
	}
	return false
}

// clientIP resolves the originating IP, honoring the forwarding headers a
// reverse proxy sets.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return extractIP(r.RemoteAddr)
}
