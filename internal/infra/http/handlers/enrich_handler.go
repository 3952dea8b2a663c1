package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/usecase"
)

type EnrichHandler struct {
	enrichUseCase *usecase.EnrichUseCase
}

func NewEnrichHandler(uc *usecase.EnrichUseCase) *EnrichHandler {
	return &EnrichHandler{enrichUseCase: uc}
}

type EnrichRequest struct {
	RecordIDs []string `json:"record_ids"`
}

// Enrich: re-enriquecimento manual de registros específicos, fora do
// ciclo agendado. Respeita a mesma política de retry e concorrência.
func (h *EnrichHandler) Enrich(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid JSON"})
		return
	}

	if len(req.RecordIDs) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "record_ids is required"})
		return
	}

	stats, err := h.enrichUseCase.EnrichByIDs(r.Context(), req.RecordIDs)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}
