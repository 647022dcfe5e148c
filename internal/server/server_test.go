package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotlens/internal/shared"
	"golang.org/x/oauth2"
)

func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"user-token","refresh_token":"refresh","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func oauthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://127.0.0.1:3000/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: "http://example.test/authorize", TokenURL: tokenURL},
	}
}

func TestRouter(t *testing.T) {
	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("expected 200 pong, got %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter(tag("first"))
		router.Use(tag("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("logging middleware passes status through", func(t *testing.T) {
		router := NewBasicRouter(Logging(shared.DiscardLogger()))
		router.Handle(http.MethodGet, "/teapot", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
		if rec.Code != http.StatusTeapot {
			t.Errorf("expected 418, got %d", rec.Code)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	t.Run("routes follow redirect path", func(t *testing.T) {
		cfg := oauthConfig("")
		cfg.RedirectURL = "http://localhost:8080/auth/done"
		if got := NewOAuthHandler(cfg, "s").Routes(); len(got) != 1 || got[0] != "/auth/done" {
			t.Errorf("expected /auth/done, got %v", got)
		}

		cfg.RedirectURL = ""
		if got := NewOAuthHandler(cfg, "s").Routes(); got[0] != "/callback" {
			t.Errorf("expected /callback fallback, got %v", got)
		}
	})

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantToken  bool
	}{
		{"valid callback", "state=abc&code=good-code", http.StatusOK, true},
		{"state mismatch", "state=wrong&code=good-code", http.StatusBadRequest, false},
		{"user denied", "state=abc&error=access_denied", http.StatusBadRequest, false},
		{"exchange rejected", "state=abc&code=bad-code", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := tokenServer(t)
			handler := NewOAuthHandler(oauthConfig(ts.URL), "abc")

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			result := <-handler.Result()
			if tt.wantToken {
				if result.Error() != nil {
					t.Fatalf("unexpected error: %v", result.Error())
				}
				if result.Token.AccessToken != "user-token" || result.Token.RefreshToken != "refresh" {
					t.Errorf("unexpected token %+v", result.Token)
				}
				return
			}
			if !errors.Is(result.Error(), shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", result.Error())
			}
		})
	}

	t.Run("second callback rejected", func(t *testing.T) {
		ts := tokenServer(t)
		handler := NewOAuthHandler(oauthConfig(ts.URL), "abc")

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=abc&code=good-code", nil))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=abc&code=good-code", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", rec.Code)
		}
	})
}

func TestCallbackServer(t *testing.T) {
	t.Run("returns token from browser callback", func(t *testing.T) {
		ts := tokenServer(t)
		handler := NewOAuthHandler(oauthConfig(ts.URL), "abc")
		srv := &CallbackServer{Addr: "127.0.0.1:0", Timeout: 5 * time.Second}

		token, err := srv.Await(context.Background(), handler, func(addr string) {
			go func() {
				resp, err := http.Get("http://" + addr + "/callback?state=abc&code=good-code")
				if err == nil {
					resp.Body.Close()
				}
			}()
		})
		if err != nil {
			t.Fatalf("Await failed: %v", err)
		}
		if token.AccessToken != "user-token" {
			t.Errorf("unexpected token %+v", token)
		}
	})

	t.Run("callback error is returned", func(t *testing.T) {
		ts := tokenServer(t)
		handler := NewOAuthHandler(oauthConfig(ts.URL), "abc")
		srv := &CallbackServer{Addr: "127.0.0.1:0", Timeout: 5 * time.Second}

		_, err := srv.Await(context.Background(), handler, func(addr string) {
			go func() {
				resp, err := http.Get("http://" + addr + "/callback?state=nope&code=good-code")
				if err == nil {
					resp.Body.Close()
				}
			}()
		})
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("times out", func(t *testing.T) {
		handler := NewOAuthHandler(oauthConfig(""), "abc")
		srv := &CallbackServer{Addr: "127.0.0.1:0", Timeout: 20 * time.Millisecond}

		_, err := srv.Await(context.Background(), handler, nil)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		handler := NewOAuthHandler(oauthConfig(""), "abc")
		srv := &CallbackServer{Addr: "127.0.0.1:0", Timeout: time.Minute}
		ctx, cancel := context.WithCancel(context.Background())

		_, err := srv.Await(ctx, handler, func(string) { cancel() })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		srv := &CallbackServer{Addr: "256.0.0.1:99999"}
		if _, err := srv.Await(context.Background(), NewOAuthHandler(oauthConfig(""), "abc"), nil); err == nil {
			t.Error("expected listen error")
		}
	})
}
