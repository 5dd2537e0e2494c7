package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spotifire/spotifire/internal/shared"
	"golang.org/x/oauth2"
)

// Exchanger trades an authorization code for a token pair.
//
// Implemented by [services.SpotifyClient].
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// TokenSink persists an exchanged token pair keyed by user.
//
// Implemented by [auth.Manager].
type TokenSink interface {
	Store(userID string, token *oauth2.Token) error
}

// CallbackHandler handles OAuth2 authorization-code callbacks for any number
// of users. The state parameter carries the requesting user's ID; the
// exchanged token is stored under that key, so each user's credential record
// is the single source of truth (no shared on-disk token cache).
type CallbackHandler struct {
	exchanger Exchanger
	sink      TokenSink
	logger    *log.Logger
}

// NewCallbackHandler creates a [CallbackHandler] persisting tokens through sink.
func NewCallbackHandler(exchanger Exchanger, sink TokenSink, logger *log.Logger) *CallbackHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CallbackHandler{exchanger: exchanger, sink: sink, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles one OAuth callback request.
//
// Requires both code and state query parameters; exchanges the code and
// upserts the credential for the user named by state.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Warn("authorization denied", "error", errParam, "description", query.Get("error_description"))
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	userID := query.Get("state")
	if code == "" || userID == "" {
		http.Error(w, "Invalid callback request. Authorization failed.", http.StatusBadRequest)
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("code exchange failed", "user_id", userID, "err", err)
		http.Error(w, "Token exchange failed", http.StatusBadRequest)
		return
	}

	if err := h.sink.Store(userID, token); err != nil {
		h.logger.Error("failed to store credential", "user_id", userID, "err", err)
		http.Error(w, "Failed to store token", http.StatusInternalServerError)
		return
	}

	h.logger.Info("credential stored", "user_id", userID)

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, callbackSuccessPage)
}

// HealthHandler reports liveness for deployment checks.
type HealthHandler struct{}

func (h HealthHandler) Routes() []string { return []string{"/health"} }

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

const callbackSuccessPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Authorization Successful</h1>
        <p>Token stored. You can close this window and return to the chat.</p>
    </div>
</body>
</html>
`
