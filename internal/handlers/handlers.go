package handlers

import (
	"time"

	"gallery-viewer/internal/gallery"
)

// Handlers bundles the HTTP handlers with their collaborators. The
// gallery service does the real work; handlers only translate between
// the wire and the core API.
type Handlers struct {
	service   *gallery.Service
	dataDir   string
	startTime time.Time
}

// New creates the handler set for the given gallery service.
func New(service *gallery.Service) *Handlers {
	return &Handlers{
		service:   service,
		dataDir:   service.Dir(),
		startTime: time.Now(),
	}
}
