package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// tokenEndpoint fakes the provider's token exchange endpoint.
func tokenEndpoint(t *testing.T) *oauth2.Config {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"exchanged_token","token_type":"Bearer","refresh_token":"refresh"}`)
	}))
	t.Cleanup(ts.Close)

	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: ts.URL},
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("successful callback exchanges the code", func(t *testing.T) {
		handler := NewOAuthHandler(tokenEndpoint(t), "expected_state")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/callback?state=expected_state&code=auth_code", nil)
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Errorf("expected success page, got %q", rec.Body.String())
		}

		result := <-handler.Result()
		if err := result.Error(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Token.AccessToken != "exchanged_token" {
			t.Errorf("unexpected token: %+v", result.Token)
		}
	})

	t.Run("state mismatch is rejected", func(t *testing.T) {
		handler := NewOAuthHandler(tokenEndpoint(t), "expected_state")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=auth_code", nil)
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected state error")
		}
	})

	t.Run("provider error is forwarded", func(t *testing.T) {
		handler := NewOAuthHandler(tokenEndpoint(t), "expected_state")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/callback?state=expected_state&error=access_denied&error_description=user+declined", nil)
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-handler.Result()
		if err := result.Error(); err == nil || !strings.Contains(err.Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("second callback is rejected", func(t *testing.T) {
		handler := NewOAuthHandler(tokenEndpoint(t), "expected_state")

		first := httptest.NewRequest(http.MethodGet, "/callback?state=expected_state&code=auth_code", nil)
		handler.ServeHTTP(httptest.NewRecorder(), first)

		rec := httptest.NewRecorder()
		second := httptest.NewRequest(http.MethodGet, "/callback?state=expected_state&code=other_code", nil)
		handler.ServeHTTP(rec, second)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replayed callback, got %d", rec.Code)
		}
	})

	t.Run("Mux registers the callback route", func(t *testing.T) {
		handler := NewOAuthHandler(tokenEndpoint(t), "expected_state")
		mux := handler.Mux()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/callback?state=expected_state&code=auth_code", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 via mux, got %d", rec.Code)
		}
	})
}
