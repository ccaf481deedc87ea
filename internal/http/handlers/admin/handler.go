package admin

import "github.com/retailsetu/delivery-engine/internal/provider"

// Handler serves the operations / back-office API.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
