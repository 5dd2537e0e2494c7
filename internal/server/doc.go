// Package server provides the HTTP side of the OAuth flow.
//
// # Callback Handler
//
// [CallbackHandler] implements the authorization-code callback for every
// user of the service at once. The authorize URL built by the auth package
// embeds the user's ID in the OAuth state parameter; when the callback
// arrives, the code is exchanged and the resulting token pair is upserted
// into the credential store under that user ID. There is no per-process or
// on-disk token cache: the store is the only source of truth.
//
// # Router Infrastructure
//
// [BasicRouter] wraps [http.ServeMux] with a middleware stack. [Middleware]
// wraps handlers in reverse registration order, following the standard Go
// pattern. [RequestLogger] is the only middleware the callback listener
// needs.
//
// The listener runs as a long-lived process via the serve command, alongside
// a /health endpoint for deployment checks.
package server
