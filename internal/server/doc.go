// Package server runs the short-lived HTTP server that completes the Spotify OAuth2 login.
//
// # Router
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] uses
// [http.ServeMux] internally. [Middleware] runs in the order it was added.
//
// # OAuth Callback
//
// [OAuthHandler] validates the state parameter, exchanges the authorization code for a token and
// sends the result through a channel. Only the first callback is processed.
//
// [CallbackServer] binds the configured host and port, reports the bound address so the caller
// can open the browser, and shuts down once a result arrives, the context ends, or the timeout
// elapses.
package server
