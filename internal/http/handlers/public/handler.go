package public

import "github.com/retailsetu/delivery-engine/internal/provider"

// Handler serves the trader and delivery-partner facing API.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
