package handlers

import (
	"net/http"

	"github.com/isdelr/weight-tracker-be/internal/models"
	"github.com/isdelr/weight-tracker-be/internal/services"
)

// WeightHandler handles HTTP requests related to weight entries.
type WeightHandler struct {
	service services.MeasurementServiceProvider
}

// NewWeightHandler creates a new WeightHandler.
func NewWeightHandler(service services.MeasurementServiceProvider) *WeightHandler {
	return &WeightHandler{service: service}
}

// WeightPayload defines the structure for weight create and update requests.
// Absent fields stay nil.
type WeightPayload struct {
	Weight   *float64 `json:"weight"`
	ClientID *int64   `json:"client_id"`
	Date     *string  `json:"date"`
	Unit     string   `json:"unit"`
}

func (p WeightPayload) input() services.MeasurementInput {
	return services.MeasurementInput{Weight: p.Weight, ClientID: p.ClientID, Date: p.Date, Unit: p.Unit}
}

type entryResponse struct {
	Message string             `json:"message"`
	Entry   models.Measurement `json:"entry"`
}

// Create handles the request to record a weight.
func (h *WeightHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var payload WeightPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	entry, err := h.service.CreateMeasurement(r.Context(), caller, payload.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entryResponse{Message: "Weight entry added", Entry: entry})
}

// GetForClient handles the request to list a client's weight history.
func (h *WeightHandler) GetForClient(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	clientID, ok := pathID(w, r, "clientID")
	if !ok {
		return
	}

	entries, err := h.service.GetMeasurementsForClient(r.Context(), caller, clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Update handles the request to change a weight entry.
func (h *WeightHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload WeightPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	entry, err := h.service.UpdateMeasurement(r.Context(), caller, id, payload.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entryResponse{Message: "Weight entry updated", Entry: entry})
}

// Delete handles the request to delete a weight entry.
func (h *WeightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteMeasurement(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Weight entry deleted")
}
