package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

type mockExchanger struct {
	err   error
	codes []string
}

func (m *mockExchanger) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	m.codes = append(m.codes, code)
	if m.err != nil {
		return nil, m.err
	}
	return &oauth2.Token{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		Expiry:       time.Now().Add(time.Hour),
	}, nil
}

type mockSink struct {
	err    error
	stored map[string]*oauth2.Token
}

func (m *mockSink) Store(userID string, token *oauth2.Token) error {
	if m.err != nil {
		return m.err
	}
	if m.stored == nil {
		m.stored = make(map[string]*oauth2.Token)
	}
	m.stored[userID] = token
	return nil
}

func TestCallbackHandler(t *testing.T) {
	t.Run("Stores Token Under State User", func(t *testing.T) {
		exchanger := &mockExchanger{}
		sink := &mockSink{}
		handler := NewCallbackHandler(exchanger, sink, nil)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state=42", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", recorder.Code)
		}
		if len(exchanger.codes) != 1 || exchanger.codes[0] != "auth-code" {
			t.Errorf("expected code exchanged once, got %v", exchanger.codes)
		}

		token, ok := sink.stored["42"]
		if !ok {
			t.Fatal("expected token stored under user 42")
		}
		if token.AccessToken != "access-auth-code" {
			t.Errorf("unexpected stored token %s", token.AccessToken)
		}

		if !strings.Contains(recorder.Body.String(), "Authorization Successful") {
			t.Error("expected success page in response body")
		}
	})

	t.Run("Missing Code", func(t *testing.T) {
		handler := NewCallbackHandler(&mockExchanger{}, &mockSink{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/callback?state=42", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", recorder.Code)
		}
	})

	t.Run("Missing State", func(t *testing.T) {
		sink := &mockSink{}
		handler := NewCallbackHandler(&mockExchanger{}, sink, nil)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=auth-code", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", recorder.Code)
		}
		if len(sink.stored) != 0 {
			t.Error("nothing should be stored without a state parameter")
		}
	})

	t.Run("Provider Error Parameter", func(t *testing.T) {
		exchanger := &mockExchanger{}
		handler := NewCallbackHandler(exchanger, &mockSink{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/callback?error=access_denied&state=42", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", recorder.Code)
		}
		if len(exchanger.codes) != 0 {
			t.Error("denied authorization should never reach the exchanger")
		}
	})

	t.Run("Exchange Failure", func(t *testing.T) {
		handler := NewCallbackHandler(&mockExchanger{err: errors.New("invalid code")}, &mockSink{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=bad&state=42", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", recorder.Code)
		}
	})

	t.Run("Store Failure", func(t *testing.T) {
		handler := NewCallbackHandler(&mockExchanger{}, &mockSink{err: errors.New("disk full")}, nil)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state=42", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", recorder.Code)
		}
	})

	t.Run("Two Users Do Not Collide", func(t *testing.T) {
		sink := &mockSink{}
		handler := NewCallbackHandler(&mockExchanger{}, sink, nil)

		for _, user := range []string{"alice", "bob"} {
			req := httptest.NewRequest(http.MethodGet, "/callback?code=code-"+user+"&state="+user, nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		if len(sink.stored) != 2 {
			t.Fatalf("expected 2 stored tokens, got %d", len(sink.stored))
		}
		if sink.stored["alice"].AccessToken != "access-code-alice" {
			t.Error("alice's token stored under the wrong key")
		}
		if sink.stored["bob"].AccessToken != "access-code-bob" {
			t.Error("bob's token stored under the wrong key")
		}
	})

	t.Run("Routes", func(t *testing.T) {
		handler := NewCallbackHandler(&mockExchanger{}, &mockSink{}, nil)
		routes := handler.Routes()
		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})
}

func TestHealthHandler(t *testing.T) {
	recorder := httptest.NewRecorder()
	HealthHandler{}.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", recorder.Code)
	}
	if recorder.Body.String() != "OK" {
		t.Errorf("expected body OK, got %q", recorder.Body.String())
	}
}
