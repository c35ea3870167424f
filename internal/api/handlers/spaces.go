package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/easypark/server/internal/api/hypermedia"
	"github.com/easypark/server/internal/api/problem"
	"github.com/easypark/server/internal/domain/paging"
	"github.com/easypark/server/internal/domain/spaces"
)

const spacesBasePath = "/api/vagas"

type SpacesHandler struct {
	Service *spaces.Service
	Env     string
}

func NewSpacesHandler(service *spaces.Service, env string) *SpacesHandler {
	return &SpacesHandler{Service: service, Env: env}
}

type spaceRequest struct {
	LevelID     int64  `json:"nivelId"`
	SpaceTypeID int64  `json:"tipoVagaId"`
	Code        string `json:"codigo"`
	Active      bool   `json:"ativa"`
}

type spaceResponse struct {
	ID          int64     `json:"id"`
	LevelID     int64     `json:"nivelId"`
	SpaceTypeID int64     `json:"tipoVagaId"`
	Code        string    `json:"codigo"`
	Active      bool      `json:"ativa"`
	CreatedAt   time.Time `json:"criadoEm"`
}

func newSpaceResponse(space *spaces.Space) spaceResponse {
	return spaceResponse{
		ID:          space.ID,
		LevelID:     space.LevelID,
		SpaceTypeID: space.SpaceTypeID,
		Code:        space.Code,
		Active:      space.Active,
		CreatedAt:   space.CreatedAt,
	}
}

type spaceStatusResponse struct {
	Status     string     `json:"status"`
	LastSeenAt *time.Time `json:"atualizadoEm,omitempty"`
	SensorID   *int64     `json:"sensorId,omitempty"`
}

func (h *SpacesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req spaceRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	created, err := h.Service.Create(r.Context(), spaces.CreateParams{
		LevelID:     req.LevelID,
		SpaceTypeID: req.SpaceTypeID,
		Code:        req.Code,
		Active:      req.Active,
	})
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", spacesBasePath, created.ID))
	writeJSON(w, http.StatusCreated, hypermedia.SpaceResource(newSpaceResponse(created), spacesBasePath, created.ID))
}

func (h *SpacesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	space, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, hypermedia.SpaceResource(newSpaceResponse(space), spacesBasePath, space.ID))
}

func (h *SpacesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	var req spaceRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	updated, err := h.Service.Update(r.Context(), id, spaces.CreateParams{
		LevelID:     req.LevelID,
		SpaceTypeID: req.SpaceTypeID,
		Code:        req.Code,
		Active:      req.Active,
	})
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, hypermedia.SpaceResource(newSpaceResponse(updated), spacesBasePath, updated.ID))
}

func (h *SpacesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *SpacesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	out := make([]spaceResponse, 0, len(items))
	for i := range items {
		out = append(out, newSpaceResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SpacesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := paging.ParseParams(query)
	filters := spaces.ParseFilters(query)

	page, err := h.Service.Search(r.Context(), filters, params)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	items := make([]spaceResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newSpaceResponse(&page.Items[i]))
	}
	result := paging.Page[spaceResponse]{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		Items:      items,
	}
	writeJSON(w, http.StatusOK, hypermedia.PageResource(result, spacesBasePath+"/search", query))
}

// Status serves the sensor-derived occupancy state; spaces the pipeline
// has not seen yet report DESCONHECIDO.
func (h *SpacesHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	if _, err := h.Service.GetByID(r.Context(), id); err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	status, err := h.Service.GetStatus(r.Context(), id)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, spaceStatusResponse{
		Status:     status.Status,
		LastSeenAt: status.LastSeenAt,
		SensorID:   status.SensorID,
	})
}
