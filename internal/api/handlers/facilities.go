package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/easypark/server/internal/api/hypermedia"
	"github.com/easypark/server/internal/api/problem"
	"github.com/easypark/server/internal/domain/facilities"
	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/paging"
	"github.com/easypark/server/internal/domain/spaces"
)

const facilitiesBasePath = "/api/estacionamentos"

type FacilitiesHandler struct {
	Service *facilities.Service
	Spaces  *spaces.Service
	Env     string
}

func NewFacilitiesHandler(service *facilities.Service, spacesService *spaces.Service, env string) *FacilitiesHandler {
	return &FacilitiesHandler{Service: service, Spaces: spacesService, Env: env}
}

type addressRequest struct {
	PostalCode   string   `json:"cep"`
	Street       string   `json:"logradouro"`
	Number       string   `json:"numero"`
	Complement   string   `json:"complemento"`
	Neighborhood string   `json:"bairro"`
	City         string   `json:"cidade"`
	StateCode    string   `json:"ufSigla"`
	StateName    string   `json:"ufNome"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (a *addressRequest) toSubmission() *geo.Submission {
	if a == nil {
		return nil
	}
	return &geo.Submission{
		PostalCode:   a.PostalCode,
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		StateCode:    a.StateCode,
		StateName:    a.StateName,
		Latitude:     a.Latitude,
		Longitude:    a.Longitude,
	}
}

type addressResponse struct {
	ID           int64    `json:"id"`
	PostalCode   string   `json:"cep,omitempty"`
	Street       string   `json:"logradouro"`
	Number       string   `json:"numero,omitempty"`
	Complement   string   `json:"complemento,omitempty"`
	Neighborhood string   `json:"bairro,omitempty"`
	City         string   `json:"cidade,omitempty"`
	StateCode    string   `json:"ufSigla,omitempty"`
	StateName    string   `json:"ufNome,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

func newAddressResponse(address geo.Address) addressResponse {
	return addressResponse{
		ID:           address.ID,
		PostalCode:   address.PostalCode,
		Street:       address.Street,
		Number:       address.Number,
		Complement:   address.Complement,
		Neighborhood: address.Neighborhood,
		City:         address.City,
		StateCode:    address.StateCode,
		StateName:    address.StateName,
		Latitude:     address.Latitude,
		Longitude:    address.Longitude,
	}
}

type facilityRequest struct {
	OperatorID int64           `json:"operadoraId"`
	Name       string          `json:"nome"`
	Address    *addressRequest `json:"endereco"`
}

type facilityResponse struct {
	ID         int64           `json:"id"`
	OperatorID int64           `json:"operadoraId"`
	Name       string          `json:"nome"`
	Address    addressResponse `json:"endereco"`
	CreatedAt  time.Time       `json:"criadoEm"`
}

func newFacilityResponse(facility *facilities.Facility) facilityResponse {
	return facilityResponse{
		ID:         facility.ID,
		OperatorID: facility.OperatorID,
		Name:       facility.Name,
		Address:    newAddressResponse(facility.Address),
		CreatedAt:  facility.CreatedAt,
	}
}

func (h *FacilitiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req facilityRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	created, err := h.Service.Create(r.Context(), facilities.CreateParams{
		OperatorID: req.OperatorID,
		Name:       req.Name,
		Address:    req.Address.toSubmission(),
	})
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", facilitiesBasePath, created.ID))
	writeJSON(w, http.StatusCreated, hypermedia.FacilityResource(newFacilityResponse(created), facilitiesBasePath, created.ID))
}

func (h *FacilitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	facility, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, hypermedia.FacilityResource(newFacilityResponse(facility), facilitiesBasePath, facility.ID))
}

func (h *FacilitiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	var req facilityRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	updated, err := h.Service.Update(r.Context(), id, facilities.CreateParams{
		OperatorID: req.OperatorID,
		Name:       req.Name,
		Address:    req.Address.toSubmission(),
	})
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, hypermedia.FacilityResource(newFacilityResponse(updated), facilitiesBasePath, updated.ID))
}

func (h *FacilitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *FacilitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	out := make([]facilityResponse, 0, len(items))
	for i := range items {
		out = append(out, newFacilityResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *FacilitiesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := paging.ParseParams(query)
	filters := facilities.ParseFilters(query)

	page, err := h.Service.Search(r.Context(), filters, params)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	items := make([]facilityResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newFacilityResponse(&page.Items[i]))
	}
	result := paging.Page[facilityResponse]{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		Items:      items,
	}
	writeJSON(w, http.StatusOK, hypermedia.PageResource(result, facilitiesBasePath+"/search", query))
}

// ListSpaces serves the facility's space collection referenced by the
// "vagas" link.
func (h *FacilitiesHandler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	if _, err := h.Service.GetByID(r.Context(), id); err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	items, err := h.Spaces.ListByFacility(r.Context(), id)
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
