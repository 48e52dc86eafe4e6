package server

import (
	"PromptCraft/internal/config"
	"PromptCraft/internal/engine"
	"PromptCraft/internal/prompt"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type echoBackend struct{ err error }

func (b echoBackend) Generate(_ context.Context, p string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return "generated: " + p[:min(10, len(p))], nil
}

func newTestServer(t *testing.T, eng *engine.Engine) *httptest.Server {
	t.Helper()
	s := New(config.ServerConfig{}, eng, zap.NewNop().Sugar())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (int, response) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func TestSynthesizeAndFollowUp(t *testing.T) {
	eng := engine.New(echoBackend{})
	ts := newTestServer(t, eng)

	code, out := do(t, ts, http.MethodPost, "/api/synthesize", `{"userInput":"a haiku","detailLevel":"small"}`)
	if code != http.StatusOK {
		t.Fatalf("synthesize status = %d (%s)", code, out.Error)
	}
	if out.State.SynthesizedPrompt == "" || out.State.DetailLevel != prompt.DetailSmall || out.State.UserInput != "a haiku" {
		t.Errorf("state after synthesize = %+v", out.State)
	}

	code, out = do(t, ts, http.MethodPost, "/api/actions/get-answer", "")
	if code != http.StatusOK {
		t.Fatalf("get answer status = %d (%s)", code, out.Error)
	}
	if out.State.AnswerTitle != "AI Answer" || out.State.FinalAnswer == "" {
		t.Errorf("state after get answer = %+v", out.State)
	}

	code, out = do(t, ts, http.MethodGet, "/api/state", "")
	if code != http.StatusOK || out.State.AnswerTitle != "AI Answer" {
		t.Errorf("GET state = %d %+v", code, out.State)
	}
}

func TestStatusMapping(t *testing.T) {
	eng := engine.New(echoBackend{})
	ts := newTestServer(t, eng)

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"empty input", http.MethodPost, "/api/synthesize", `{"userInput":"  "}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/synthesize", `{`, http.StatusBadRequest},
		{"unknown action", http.MethodPost, "/api/actions/translate", "", http.StatusNotFound},
		{"nothing to summarize", http.MethodPost, "/api/actions/summarize", "", http.StatusUnprocessableEntity},
		{"nothing to read", http.MethodPost, "/api/read-aloud", "", http.StatusUnprocessableEntity},
		{"no recognizer", http.MethodPost, "/api/listen", "", http.StatusNotImplemented},
		{"wrong method", http.MethodGet, "/api/synthesize", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
			resp, err := ts.Client().Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	_, out := do(t, ts, http.MethodGet, "/api/state", "")
	if out.State.LastSynthesisError != engine.MsgEmptyInput {
		t.Errorf("LastSynthesisError = %q", out.State.LastSynthesisError)
	}
}

func TestBackendFailure(t *testing.T) {
	eng := engine.New(echoBackend{err: errors.New("quota exceeded")})
	ts := newTestServer(t, eng)

	code, out := do(t, ts, http.MethodPost, "/api/synthesize", `{"userInput":"idea"}`)
	if code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", code)
	}
	if out.State.LastSynthesisError != engine.MsgSynthesisFailed {
		t.Errorf("LastSynthesisError = %q", out.State.LastSynthesisError)
	}
	if strings.Contains(out.Error, "quota") {
		t.Errorf("backend detail leaked to client: %q", out.Error)
	}
}

func TestInputAndCopy(t *testing.T) {
	eng := engine.New(echoBackend{}, engine.WithCopiedResetDelay(time.Hour))
	ts := newTestServer(t, eng)

	code, out := do(t, ts, http.MethodPut, "/api/input", `{"userInput":"draft","detailLevel":"detailed"}`)
	if code != http.StatusOK || out.State.UserInput != "draft" || out.State.DetailLevel != prompt.DetailDetailed {
		t.Errorf("PUT input = %d %+v", code, out.State)
	}

	code, out = do(t, ts, http.MethodPost, "/api/copy", `{"text":"draft"}`)
	if code != http.StatusOK || !out.State.Copied {
		t.Errorf("copy = %d %+v", code, out.State)
	}
}

func TestWebSocketStreamsState(t *testing.T) {
	eng := engine.New(echoBackend{})
	ts := newTestServer(t, eng)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var st engine.State
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("initial snapshot: %v", err)
	}
	if st.DetailLevel != prompt.DetailMedium {
		t.Errorf("initial DetailLevel = %q", st.DetailLevel)
	}

	eng.SetUserInput("typed")
	for st.UserInput != "typed" {
		if err := conn.ReadJSON(&st); err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	if err := eng.Close(); err != nil {
		t.Fatal(err)
	}
	for {
		if err := conn.ReadJSON(&st); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
				t.Errorf("expected going-away close, got %v", err)
			}
			break
		}
	}
}
