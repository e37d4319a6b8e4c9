// Package facade is the engine's public request-reply surface: a narrow
// set of JSON-in/JSON-out operations served over a Unix domain socket.
// The transport shape is grounded on doublezerod's api.ApiServer (an
// options-configured wrapper around *http.Server plus the socket path);
// this is the only package in the engine that serializes to JSON.
package facade

import (
	"context"
	"net"
	"net/http"
)

// Server wraps http.Server with the Unix socket path it will bind,
// mirroring api.ApiServer's shape exactly.
type Server struct {
	*http.Server
	sockFile string
}

// Option configures a Server at construction.
type Option func(*Server)

// NewServer builds a Server from functional options.
func NewServer(opts ...Option) *Server {
	s := &Server{Server: &http.Server{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// WithSockFile records the Unix socket path the caller will net.Listen on.
func WithSockFile(sockFile string) Option {
	return func(s *Server) { s.sockFile = sockFile }
}

// WithBaseContext sets the context every accepted connection inherits,
// so shutdown propagates to in-flight handlers.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) { s.BaseContext = func(net.Listener) context.Context { return ctx } }
}

// WithHandler sets the server's request router.
func WithHandler(mux *http.ServeMux) Option {
	return func(s *Server) { s.Handler = mux }
}

// SockFile returns the configured socket path.
func (s *Server) SockFile() string { return s.sockFile }
