package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/interviewai/backend/pkg/interview"
)

const (
	// EndFrame follows the last increment of a successful turn.
	EndFrame = "[END]"

	writeWait = 10 * time.Second
)

type wsRequest struct {
	Question    string `json:"question"`
	ImageBase64 string `json:"image_base64"`
}

// wsAsk answers questions over one WebSocket. Each JSON request frame
// starts a turn whose increments are sent as text frames followed by
// EndFrame, or by a single "[ERROR] ..." frame when the turn fails.
func (s *Server) wsAsk(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("server: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("server: ws/ask read", "err", err)
			}
			return
		}
		if err := s.wsTurn(ctx, conn, req); err != nil {
			slog.Debug("server: ws/ask write", "err", err)
			return
		}
	}
}

// wsTurn runs one turn. It returns an error only when the connection can no
// longer be written to.
func (s *Server) wsTurn(ctx context.Context, conn *websocket.Conn, req wsRequest) error {
	question := strings.TrimSpace(req.Question)
	image := strings.TrimSpace(req.ImageBase64)
	if question == "" && image == "" {
		return writeText(conn, "[ERROR] Question cannot be empty.")
	}
	if image != "" && s.Vision == nil {
		return writeText(conn, "[ERROR] Vision pipeline is not configured.")
	}
	sess, release, err := s.acquire()
	if err != nil {
		return writeText(conn, errorFrame(err))
	}
	defer release()

	var turn *interview.Turn
	if image != "" {
		turn = s.Vision.Stream(ctx, sess, image)
	} else {
		turn = s.Answerer.Stream(ctx, sess, question)
	}

	b := interview.Bridge(ctx, turn.Deltas())
	defer b.Wait()
	for text, err := range b.All(ctx) {
		if err != nil {
			slog.Warn("server: ws/ask turn failed", "session", sess.ID, "err", err)
			return writeText(conn, errorFrame(err))
		}
		if werr := writeText(conn, text); werr != nil {
			return werr
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeText(conn, EndFrame)
}

func writeText(conn *websocket.Conn, text string) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}
