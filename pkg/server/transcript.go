package server

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"
)

// DuplicateRatio is the similarity above which a transcript chunk counts as
// a repeat of the previous one.
const DuplicateRatio = 0.8

const broadcastLimit = 16

// PushStatus reports what the hub did with a pushed transcript chunk.
type PushStatus string

const (
	PushOK        PushStatus = "ok"
	PushIgnored   PushStatus = "ignored"
	PushDuplicate PushStatus = "duplicate"
)

// TranscriptHub fans live speech-to-text chunks out to every connected
// listener. Listeners whose write fails are dropped.
type TranscriptHub struct {
	mu     sync.Mutex
	subs   map[*listener]struct{}
	last   string
	closed bool
}

type listener struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *listener) send(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return writeText(l.conn, text)
}

func NewTranscriptHub() *TranscriptHub {
	return &TranscriptHub{subs: make(map[*listener]struct{})}
}

// Len returns the number of connected listeners.
func (h *TranscriptHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *TranscriptHub) subscribe(conn *websocket.Conn) (*listener, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	l := &listener{conn: conn}
	h.subs[l] = struct{}{}
	return l, true
}

func (h *TranscriptHub) unsubscribe(l *listener) {
	h.mu.Lock()
	_, ok := h.subs[l]
	delete(h.subs, l)
	h.mu.Unlock()
	if ok {
		l.conn.Close()
	}
}

// Publish sends text to all listeners. Blank text is ignored and a chunk
// too similar to the previous one is suppressed.
func (h *TranscriptHub) Publish(text string) PushStatus {
	text = strings.TrimSpace(text)
	if text == "" {
		return PushIgnored
	}
	normalized := strings.ToLower(text)

	h.mu.Lock()
	if h.last != "" && similarity(normalized, h.last) > DuplicateRatio {
		h.mu.Unlock()
		return PushDuplicate
	}
	h.last = normalized
	subs := make([]*listener, 0, len(h.subs))
	for l := range h.subs {
		subs = append(subs, l)
	}
	h.mu.Unlock()

	var g errgroup.Group
	g.SetLimit(broadcastLimit)
	for _, l := range subs {
		g.Go(func() error {
			if err := l.send(text); err != nil {
				slog.Debug("server: dropping transcript listener", "err", err)
				h.unsubscribe(l)
			}
			return nil
		})
	}
	g.Wait()
	return PushOK
}

// Close disconnects every listener and refuses new ones.
func (h *TranscriptHub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = make(map[*listener]struct{})
	h.mu.Unlock()
	for l := range subs {
		l.conn.Close()
	}
}

// similarity is the difflib ratio of a and b compared rune by rune.
func similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

func (s *Server) wsTranscript(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("server: websocket upgrade failed", "err", err)
		return
	}
	l, ok := s.Hub.subscribe(conn)
	if !ok {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	defer s.Hub.unsubscribe(l)
	// Listeners are not expected to send anything; reading detects closure.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

type pushRequest struct {
	Text string `json:"text"`
}

func (s *Server) pushTranscript(c *gin.Context) {
	var req pushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": s.Hub.Publish(req.Text)})
}
