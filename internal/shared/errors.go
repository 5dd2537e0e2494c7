package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication and token lifecycle errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNoCredential     = fmt.Errorf("no credential on record")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrExchangeFailed   = fmt.Errorf("code exchange failed")

	// Generation and upstream errors
	ErrGenerationFailed = fmt.Errorf("song generation failed")
	ErrUpstream         = fmt.Errorf("upstream request failed")
	ErrArtworkFailed    = fmt.Errorf("artwork generation failed")
	ErrEmptyResolution  = fmt.Errorf("no candidates resolved")
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrTrackNotFound    = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
