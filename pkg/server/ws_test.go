package server

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/interviewai/backend/pkg/interview"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readTurn reads frames until [END] or an [ERROR] frame.
func readTurn(t *testing.T, conn *websocket.Conn) []string {
	t.Helper()
	var frames []string
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v (frames so far %q)", err, frames)
		}
		frames = append(frames, string(msg))
		if string(msg) == EndFrame || strings.HasPrefix(string(msg), "[ERROR]") {
			return frames
		}
	}
}

func TestWSAsk(t *testing.T) {
	s, srv := newTestServer(t, &scriptGen{content: "x", texts: []string{"Hello", " world"}})
	conn := dial(t, srv, "/ws/ask")

	conn.WriteJSON(wsRequest{Question: "hi"})
	if got := readTurn(t, conn); got[0] != "[ERROR] "+ErrNoSession.Error() {
		t.Errorf("no session frames = %q", got)
	}

	s.SetSession(interview.NewSession("", ""))
	conn.WriteJSON(wsRequest{Question: "  "})
	if diff := cmp.Diff([]string{"[ERROR] Question cannot be empty."}, readTurn(t, conn)); diff != "" {
		t.Errorf("empty question (-want +got):\n%s", diff)
	}

	// The connection survives errors and serves several turns.
	for range 2 {
		conn.WriteJSON(wsRequest{Question: "Tell me about yourself"})
		if diff := cmp.Diff([]string{"Hello", " world", EndFrame}, readTurn(t, conn)); diff != "" {
			t.Errorf("turn frames (-want +got):\n%s", diff)
		}
	}
	waitFor(t, func() bool { return len(s.Session().Memory()) == 2 })
}

func TestWSAskUpstreamFailure(t *testing.T) {
	s, srv := newTestServer(t, &scriptGen{content: "x", texts: []string{"partial"}, streamErr: errors.New("boom")})
	s.SetSession(interview.NewSession("", ""))
	conn := dial(t, srv, "/ws/ask")

	conn.WriteJSON(wsRequest{Question: "q"})
	got := readTurn(t, conn)
	if len(got) != 2 || got[0] != "partial" || !strings.HasPrefix(got[1], "[ERROR] ") {
		t.Errorf("frames = %q", got)
	}
	for _, f := range got {
		if f == EndFrame {
			t.Error("failed turn must not send [END]")
		}
	}
}

func TestWSAskBadImage(t *testing.T) {
	s, srv := newTestServer(t, &scriptGen{})
	s.SetSession(interview.NewSession("", ""))
	conn := dial(t, srv, "/ws/ask")

	conn.WriteJSON(wsRequest{ImageBase64: "not base64!"})
	got := readTurn(t, conn)
	if len(got) != 1 || !strings.Contains(got[0], "invalid image") {
		t.Errorf("frames = %q", got)
	}
}
