package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/easypark/server/internal/api/hypermedia"
	"github.com/easypark/server/internal/api/problem"
	"github.com/easypark/server/internal/domain/paging"
	"github.com/easypark/server/internal/domain/reservations"
)

const reservationsBasePath = "/api/reservas"

type ReservationsHandler struct {
	Service *reservations.Service
	Env     string
}

func NewReservationsHandler(service *reservations.Service, env string) *ReservationsHandler {
	return &ReservationsHandler{Service: service, Env: env}
}

type reservationRequest struct {
	UserID          int64      `json:"usuarioId"`
	SpaceID         int64      `json:"vagaId"`
	Status          string     `json:"status"`
	StartsAt        *time.Time `json:"dataInicio"`
	EndsAt          *time.Time `json:"dataFim"`
	ETA             *time.Time `json:"eta"`
	SpaceBlocked    bool       `json:"vagaBloqueada"`
	EstimatedAmount *float64   `json:"valorEstimado"`
	FinalAmount     *float64   `json:"valorFinal"`
}

func (req reservationRequest) toParams() reservations.CreateParams {
	return reservations.CreateParams{
		UserID:          req.UserID,
		SpaceID:         req.SpaceID,
		Status:          req.Status,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		ETA:             req.ETA,
		SpaceBlocked:    req.SpaceBlocked,
		EstimatedAmount: req.EstimatedAmount,
		FinalAmount:     req.FinalAmount,
	}
}

type reservationResponse struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"usuarioId"`
	SpaceID         int64      `json:"vagaId"`
	Status          string     `json:"status"`
	StartsAt        *time.Time `json:"dataInicio,omitempty"`
	EndsAt          *time.Time `json:"dataFim,omitempty"`
	ETA             *time.Time `json:"eta,omitempty"`
	SpaceBlocked    bool       `json:"vagaBloqueada"`
	EstimatedAmount *float64   `json:"valorEstimado,omitempty"`
	FinalAmount     *float64   `json:"valorFinal,omitempty"`
}

func newReservationResponse(reservation *reservations.Reservation) reservationResponse {
	return reservationResponse{
		ID:              reservation.ID,
		UserID:          reservation.UserID,
		SpaceID:         reservation.SpaceID,
		Status:          reservation.Status,
		StartsAt:        reservation.StartsAt,
		EndsAt:          reservation.EndsAt,
		ETA:             reservation.ETA,
		SpaceBlocked:    reservation.SpaceBlocked,
		EstimatedAmount: reservation.EstimatedAmount,
		FinalAmount:     reservation.FinalAmount,
	}
}

func (h *ReservationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	created, err := h.Service.Create(r.Context(), req.toParams())
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", reservationsBasePath, created.ID))
	writeJSON(w, http.StatusCreated, newReservationResponse(created))
}

func (h *ReservationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	reservation, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newReservationResponse(reservation))
}

func (h *ReservationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	var req reservationRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	updated, err := h.Service.Update(r.Context(), id, req.toParams())
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newReservationResponse(updated))
}

func (h *ReservationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := paging.ParseParams(query)
	filters := reservations.ParseFilters(query)

	page, err := h.Service.Search(r.Context(), filters, params)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	items := make([]reservationResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newReservationResponse(&page.Items[i]))
	}
	result := paging.Page[reservationResponse]{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		Items:      items,
	}
	writeJSON(w, http.StatusOK, hypermedia.PageResource(result, reservationsBasePath+"/search", query))
}
