package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/easypark/server/internal/api/problem"
	"github.com/easypark/server/internal/domain/jobs"
)

// JobsHandler exposes the stored procedures that expire reservations and
// recalculate ETAs. The procedures own the logic; these endpoints only
// trigger them and report the outcome.
type JobsHandler struct {
	Service *jobs.Service
	Env     string
}

func NewJobsHandler(service *jobs.Service, env string) *JobsHandler {
	return &JobsHandler{Service: service, Env: env}
}

type jobCountResponse struct {
	Cancelled int `json:"canceladas"`
}

type etaResponse struct {
	Status  string `json:"status"`
	Message string `json:"mensagem"`
}

func (h *JobsHandler) ReservationTimeouts(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.CancelExpiredReservations(r.Context())
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, jobCountResponse{Cancelled: count})
}

func (h *JobsHandler) PreReservationTimeouts(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.CancelExpiredPreReservations(r.Context())
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, jobCountResponse{Cancelled: count})
}

func (h *JobsHandler) UpdateETA(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	minutes, err := strconv.Atoi(r.URL.Query().Get("minutos"))
	if err != nil || minutes <= 0 {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida",
			fmt.Errorf("parâmetro minutos inválido"), h.Env)
		return
	}

	result, err := h.Service.UpdateReservationETA(r.Context(), id, minutes)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, etaResponse{Status: result.Status, Message: result.Message})
}
