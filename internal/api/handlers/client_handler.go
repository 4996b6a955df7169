package handlers

import (
	"net/http"

	"github.com/isdelr/weight-tracker-be/internal/models"
	"github.com/isdelr/weight-tracker-be/internal/services"
)

// ClientHandler handles HTTP requests related to a trainer's clients.
type ClientHandler struct {
	service services.ClientServiceProvider
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(service services.ClientServiceProvider) *ClientHandler {
	return &ClientHandler{service: service}
}

// ClientPayload defines the structure for client creation requests.
type ClientPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Create handles the request to add a client.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var payload ClientPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	client, err := h.service.CreateClient(r.Context(), caller, payload.Name, payload.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message string        `json:"message"`
		Client  models.Client `json:"client"`
	}{"Client added successfully", client})
}

// GetAll handles the request to list the caller's clients.
func (h *ClientHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	clients, err := h.service.GetClientsForAccount(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// Get handles the request to get a single client by its ID.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	client, err := h.service.GetClient(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// Delete handles the request to delete a client and its weight entries.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteClient(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Client deleted successfully")
}
