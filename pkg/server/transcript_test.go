package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func pushStatus(t *testing.T, url, text string) PushStatus {
	t.Helper()
	body, _ := json.Marshal(pushRequest{Text: text})
	code, resp := post(t, url+"/stt/push", string(body))
	if code != http.StatusOK {
		t.Fatalf("push status = %d, body = %s", code, resp)
	}
	var got struct {
		Status PushStatus `json:"status"`
	}
	json.Unmarshal([]byte(resp), &got)
	return got.Status
}

func TestTranscriptFanOut(t *testing.T) {
	s, srv := newTestServer(t, &scriptGen{})
	a := dial(t, srv, "/ws/stt")
	b := dial(t, srv, "/ws/stt")
	waitFor(t, func() bool { return s.Hub.Len() == 2 })

	if got := pushStatus(t, srv.URL, "  "); got != PushIgnored {
		t.Errorf("blank push = %q, want ignored", got)
	}
	if got := pushStatus(t, srv.URL, "What is a goroutine?"); got != PushOK {
		t.Errorf("push = %q, want ok", got)
	}
	for _, c := range []*websocket.Conn{a, b} {
		c.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := c.ReadMessage()
		if err != nil || string(msg) != "What is a goroutine?" {
			t.Errorf("listener got %q, %v", msg, err)
		}
	}

	if got := pushStatus(t, srv.URL, "what is a goroutine"); got != PushDuplicate {
		t.Errorf("near-duplicate push = %q, want duplicate", got)
	}

	a.Close()
	waitFor(t, func() bool { return s.Hub.Len() == 1 })
}

func TestTranscriptHubClose(t *testing.T) {
	s, srv := newTestServer(t, &scriptGen{})
	c := dial(t, srv, "/ws/stt")
	waitFor(t, func() bool { return s.Hub.Len() == 1 })

	s.Hub.Close()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := c.ReadMessage(); err == nil {
		t.Error("listener should be disconnected after Close")
	}
	if got := s.Hub.Publish("after close"); got != PushOK || s.Hub.Len() != 0 {
		t.Errorf("publish after close = %q with %d listeners", got, s.Hub.Len())
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		dup  bool
	}{
		{"what is a goroutine?", "what is a goroutine", true},
		{"tell me about yourself", "tell me about yourself", true},
		{"tell me about yourself", "how do channels work", false},
		{"explain mutexes", "explain mutexes and how you would avoid deadlocks in practice", false},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b) > DuplicateRatio; got != tt.dup {
			t.Errorf("similarity(%q, %q) = %.2f, dup = %v, want %v", tt.a, tt.b, similarity(tt.a, tt.b), got, tt.dup)
		}
	}
}
