package handlers

import (
	"net/http"

	"inkwell/internal/respond"
)

// Meta serves liveness and the bound port for clients that look it up.
type Meta struct {
	port int
}

// NewMeta creates the meta handlers for a server listening on port.
func NewMeta(port int) *Meta {
	return &Meta{port: port}
}

// Health reports that the process is serving.
func (h *Meta) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ServerInfo reports the port the server actually bound.
func (h *Meta) ServerInfo(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]int{"port": h.port})
}

// NotFound answers unknown routes with the error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
}
