package handler

import (
	"net/http"

	"github.com/adwall/adwall/internal/formconfig"
)

// FormConfigHandler serves the validation schema consumed by the
// editing form.
type FormConfigHandler struct {
	schema formconfig.Schema
}

// NewFormConfigHandler creates a new FormConfigHandler.
func NewFormConfigHandler(schema formconfig.Schema) *FormConfigHandler {
	return &FormConfigHandler{schema: schema}
}

// Get handles GET /api/form-config.
func (h *FormConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.schema)
}
