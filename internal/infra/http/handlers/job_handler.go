package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/infra/scheduler"
)

type JobHandler struct {
	scheduler *scheduler.Scheduler
}

func NewJobHandler(s *scheduler.Scheduler) *JobHandler {
	return &JobHandler{scheduler: s}
}

type TriggerJobResponse struct {
	Job    string `json:"job"`
	Result string `json:"result"`
}

type JobListResponse struct {
	Jobs []string `json:"jobs"`
}

// Trigger dispara um job manualmente. Se o job já está rodando o
// disparo é descartado e a resposta diz "skipped".
func (h *JobHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	result, err := h.scheduler.Trigger(r.Context(), name)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result == "skipped" {
		w.WriteHeader(http.StatusConflict)
	} else {
		w.WriteHeader(http.StatusAccepted)
	}
	json.NewEncoder(w).Encode(TriggerJobResponse{Job: name, Result: result})
}

func (h *JobHandler) Status(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	status, err := h.scheduler.Status(name)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(JobListResponse{Jobs: h.scheduler.Jobs()})
}
