// Package server exposes the interview pipelines over HTTP and WebSocket.
//
// One process serves one candidate: there is a single current session and
// at most one answer turn in flight at a time.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/interviewai/backend/pkg/interview"
)

var (
	// ErrNoSession is returned when a turn is requested before
	// /session/init.
	ErrNoSession = errors.New("server: no active session, call /session/init first")

	// ErrTurnInFlight is returned when a turn is requested while another
	// one is still streaming.
	ErrTurnInFlight = errors.New("server: another answer is in progress")
)

// Server routes requests to the pipelines and owns the current session.
type Server struct {
	Answerer *interview.Answerer
	Vision   *interview.Vision
	Preparer *interview.Preparer
	Hub      *TranscriptHub

	upgrader websocket.Upgrader

	mu      sync.Mutex
	session *interview.Session
	busy    bool
}

// New returns a server. A nil hub is replaced by a fresh one.
func New(a *interview.Answerer, v *interview.Vision, p *interview.Preparer, hub *TranscriptHub) *Server {
	if hub == nil {
		hub = NewTranscriptHub()
	}
	return &Server{
		Answerer: a,
		Vision:   v,
		Preparer: p,
		Hub:      hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler builds the gin engine with all routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), allowAllOrigins())

	r.GET("/health", s.health)
	r.POST("/session/init", s.initSession)
	r.POST("/ask", s.ask)
	r.POST("/ask/image", s.askImage)
	r.POST("/ask/summary", s.askSummary)
	r.GET("/ws/ask", s.wsAsk)
	r.GET("/ws/stt", s.wsTranscript)
	r.POST("/stt/push", s.pushTranscript)
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("server: listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.Hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Session returns the current session, or nil.
func (s *Server) Session() *interview.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// SetSession replaces the current session.
func (s *Server) SetSession(sess *interview.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
}

// acquire reserves the single turn slot. The returned release must be
// called once the turn has finished.
func (s *Server) acquire() (*interview.Session, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, nil, ErrNoSession
	}
	if s.busy {
		return nil, nil, ErrTurnInFlight
	}
	s.busy = true
	return s.session, func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}, nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("server: request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

func allowAllOrigins() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
