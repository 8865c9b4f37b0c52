package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clovis-labs/rhassist/internal/agent"
	"github.com/clovis-labs/rhassist/internal/log"
)

type stubIndex struct {
	ready bool
	count int
}

func (s stubIndex) Ready() bool { return s.ready }
func (s stubIndex) Count() int  { return s.count }

func okChat(out agent.Output) ChatFunc {
	return func(context.Context, agent.Input) (agent.Output, error) {
		return out, nil
	}
}

func newTestServer(t *testing.T, cfg ServerConfig) *Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	if cfg.Chat == nil {
		cfg.Chat = okChat(agent.Output{Response: "ok", ThreadID: "t1", SourcesUsed: true})
	}
	if cfg.Index == nil {
		cfg.Index = stubIndex{ready: true, count: 42}
	}
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() unexpected error: %v", err)
	}
	return srv
}

func TestChatEndpoint(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		var got agent.Input
		srv := newTestServer(t, ServerConfig{
			Chat: func(_ context.Context, in agent.Input) (agent.Output, error) {
				got = in
				return agent.Output{Response: "25 jours", ThreadID: "t1", SourcesUsed: true}, nil
			},
		})

		body := `{"message":"Combien de congés ?","profile":"CDI","thread_id":"t1"}`
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if got.Profile != "CDI" || got.ThreadID != "t1" {
			t.Errorf("handler passed input %+v", got)
		}

		var out agent.Output
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
		if out.Response != "25 jours" || !out.SourcesUsed {
			t.Errorf("response = %+v", out)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t, ServerConfig{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader("{")))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("message too short", func(t *testing.T) {
		srv := newTestServer(t, ServerConfig{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"ok"}`)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "message_too_short") {
			t.Errorf("body = %q, want message_too_short code", rec.Body.String())
		}
	})

	t.Run("invalid profile", func(t *testing.T) {
		srv := newTestServer(t, ServerConfig{})
		rec := httptest.NewRecorder()
		body := `{"message":"Combien de congés ?","profile":"Freelance"}`
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid_profile") {
			t.Errorf("body = %q, want invalid_profile code", rec.Body.String())
		}
	})

	t.Run("chat failure", func(t *testing.T) {
		srv := newTestServer(t, ServerConfig{
			Chat: func(context.Context, agent.Input) (agent.Output, error) {
				return agent.Output{}, errors.New("model unavailable")
			},
		})
		rec := httptest.NewRecorder()
		body := `{"message":"Combien de congés ?"}`
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body)))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		srv := newTestServer(t, ServerConfig{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestMetaEndpoints(t *testing.T) {
	srv := newTestServer(t, ServerConfig{ModelName: "gemini-2.5-flash", TopK: 4})

	t.Run("profiles", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var out map[string][]string
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
		if got, want := len(out["profiles"]), 6; got != want {
			t.Errorf("len(profiles) = %d, want %d", got, want)
		}
	})

	t.Run("domains", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/domains", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var out map[string][]string
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
		if got, want := len(out["domains"]), 5; got != want {
			t.Errorf("len(domains) = %d, want %d", got, want)
		}
	})

	t.Run("config", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var out map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
		if out["model_name"] != "gemini-2.5-flash" {
			t.Errorf("model_name = %v, want gemini-2.5-flash", out["model_name"])
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		srv := newTestServer(t, ServerConfig{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("ready with loaded index", func(t *testing.T) {
		srv := newTestServer(t, ServerConfig{Index: stubIndex{ready: true, count: 7}})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"documents":7`) {
			t.Errorf("body = %q, want document count", rec.Body.String())
		}
	})

	t.Run("not ready before index load", func(t *testing.T) {
		srv := newTestServer(t, ServerConfig{Index: stubIndex{ready: false}})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, ServerConfig{RateBurst: 3})

	var lastCode int
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		srv.Handler().ServeHTTP(rec, req)
		lastCode = rec.Code
	}
	if lastCode != http.StatusTooManyRequests {
		t.Errorf("status after burst = %d, want 429", lastCode)
	}

	// A different IP still has its own budget
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status for fresh IP = %d, want 200", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, ServerConfig{CORSOrigins: []string{"http://localhost:8501"}})

	t.Run("allowed origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil)
		req.Header.Set("Origin", "http://localhost:8501")
		srv.Handler().ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8501" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
	})

	t.Run("unknown origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil)
		req.Header.Set("Origin", "http://evil.example")
		srv.Handler().ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
		req.Header.Set("Origin", "http://localhost:8501")
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want 204", rec.Code)
		}
	})
}
