package server

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/interviewai/backend/pkg/interview"
)

type askRequest struct {
	Question string `json:"question"`
}

type imageRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type sessionReply struct {
	Status           string `json:"status"`
	SessionID        string `json:"session_id"`
	Company          string `json:"company"`
	Role             string `json:"role"`
	HasResumeSummary bool   `json:"has_resume_summary"`
	HasJDSummary     bool   `json:"has_jd_summary"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) initSession(c *gin.Context) {
	var in interview.SessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortError(c, http.StatusBadRequest, err)
		return
	}
	sess, err := s.Preparer.NewSession(c.Request.Context(), in)
	if err != nil {
		abortError(c, statusOf(err), err)
		return
	}
	s.SetSession(sess)
	slog.Info("server: session initialized", "session", sess.ID, "company", sess.Company, "role", sess.Role)
	c.JSON(http.StatusOK, sessionReply{
		Status:           "session_initialized",
		SessionID:        sess.ID,
		Company:          sess.Company,
		Role:             sess.Role,
		HasResumeSummary: sess.ResumeSummary != "",
		HasJDSummary:     sess.JDSummary != "",
	})
}

func (s *Server) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		abortError(c, http.StatusBadRequest, errors.New("question cannot be empty"))
		return
	}
	sess, release, err := s.acquire()
	if err != nil {
		abortError(c, http.StatusConflict, err)
		return
	}
	defer release()
	streamText(c, s.Answerer.Stream(c.Request.Context(), sess, req.Question).Deltas())
}

func (s *Server) askImage(c *gin.Context) {
	if s.Vision == nil {
		abortError(c, http.StatusServiceUnavailable, errors.New("vision pipeline is not configured"))
		return
	}
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err)
		return
	}
	sess, release, err := s.acquire()
	if err != nil {
		abortError(c, http.StatusConflict, err)
		return
	}
	defer release()
	streamText(c, s.Vision.Stream(c.Request.Context(), sess, req.ImageBase64).Deltas())
}

func (s *Server) askSummary(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		abortError(c, http.StatusBadRequest, errors.New("question cannot be empty"))
		return
	}
	streamText(c, s.Preparer.SummarizeQuestion(c.Request.Context(), req.Question))
}

// streamText writes seq as a chunked text/plain body. A failure before the
// first increment is reported with a status code; a later one is appended
// as an "[ERROR] ..." line.
func streamText(c *gin.Context, seq iter.Seq2[string, error]) {
	next, stop := iter.Pull2(seq)
	defer stop()

	first, err, ok := next()
	if err != nil {
		abortError(c, statusOf(err), err)
		return
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	if !ok {
		c.Writer.WriteHeaderNow()
		return
	}

	w := c.Writer
	for text := first; ; {
		if text != "" {
			if _, werr := w.WriteString(text); werr != nil {
				slog.Debug("server: client went away", "err", werr)
				return
			}
			w.Flush()
		}
		text, err, ok = next()
		if !ok {
			return
		}
		if err != nil {
			slog.Warn("server: stream failed", "path", c.FullPath(), "err", err)
			fmt.Fprintf(w, "\n%s", errorFrame(err))
			w.Flush()
			return
		}
	}
}

// statusOf maps pipeline errors onto HTTP status codes.
func statusOf(err error) int {
	var up *interview.UpstreamError
	switch {
	case errors.Is(err, interview.ErrEmptyInput), errors.Is(err, interview.ErrBadImage):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrTurnInFlight):
		return http.StatusConflict
	case errors.As(err, &up):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func abortError(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		slog.Warn("server: request failed", "path", c.FullPath(), "status", code, "err", err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func errorFrame(err error) string {
	return "[ERROR] " + err.Error()
}
