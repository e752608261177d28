package server

import (
	"context"
	"crypto/tls"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"report-router/internal/common/errors"
	"report-router/internal/common/logging"
)

// Server represents an HTTP server
type Server struct {
	srv     *http.Server
	tlsCert string
	tlsKey  string
	logger  logging.Logger
	errCh   chan error
}

// New creates a new server instance. TLS is enabled when both tlsCert and
// tlsKey are set.
func New(handler http.Handler, port, tlsCert, tlsKey string, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Server{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		tlsCert: tlsCert,
		tlsKey:  tlsKey,
		logger:  logger.WithFields(logging.Field{Key: "component", Value: "http_server"}),
		errCh:   make(chan error, 1),
	}
}

// Start binds the listening socket and serves in the background. Bind
// failures are returned directly; later serve failures arrive on Errors.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.ConnectionError("failed to listen", err).WithContext("addr", s.srv.Addr)
	}
	return s.Serve(ln)
}

// Serve serves on ln in the background.
func (s *Server) Serve(ln net.Listener) error {
	useTLS := s.tlsCert != "" && s.tlsKey != ""
	if useTLS {
		s.srv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	s.logger.Info("HTTP server listening", logging.Field{Key: "addr", Value: ln.Addr().String()}, logging.Field{Key: "tls", Value: useTLS})

	go func() {
		var err error
		if useTLS {
			err = s.srv.ServeTLS(ln, s.tlsCert, s.tlsKey)
		} else {
			err = s.srv.Serve(ln)
		}
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped unexpectedly", err)
			s.errCh <- err
		}
	}()
	return nil
}

// Errors delivers a fatal serve error, if one occurs.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
