package app

import (
	"context"
	"errors"
	"net/http"
)

// HTTPService wraps the gin engine in the runner's Service shape.
type HTTPService struct {
	name   string
	server *http.Server
}

// NewHTTPService creates the HTTP service.
func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	return &HTTPService{
		name: "http",
		server: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
	}
}

// Name returns the service name.
func (s *HTTPService) Name() string {
	if s == nil || s.name == "" {
		return "http"
	}
	return s.name
}

// Start serves until shutdown.
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests.
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
