package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/easypark/server/internal/api/hypermedia"
	"github.com/easypark/server/internal/api/problem"
	"github.com/easypark/server/internal/domain/paging"
	"github.com/easypark/server/internal/domain/payments"
)

const paymentsBasePath = "/api/pagamentos"

type PaymentsHandler struct {
	Service *payments.Service
	Env     string
}

func NewPaymentsHandler(service *payments.Service, env string) *PaymentsHandler {
	return &PaymentsHandler{Service: service, Env: env}
}

type payerRequest struct {
	Document string          `json:"documento"`
	Name     string          `json:"nome"`
	Address  *addressRequest `json:"endereco"`
}

type cardRequest struct {
	Holder        string `json:"titular"`
	Brand         string `json:"bandeira"`
	LastDigits    string `json:"ultimosDigitos"`
	TransactionID string `json:"transacaoId"`
}

type paymentRequest struct {
	ReservationID  *int64        `json:"reservaId"`
	UserID         *int64        `json:"usuarioId"`
	Amount         float64       `json:"valor"`
	Status         string        `json:"status"`
	IdempotencyKey string        `json:"chaveIdempotencia"`
	Payer          *payerRequest `json:"pagador"`
	Card           *cardRequest  `json:"cartao"`
}

type payerResponse struct {
	Document string           `json:"documento"`
	Name     string           `json:"nome,omitempty"`
	Address  *addressResponse `json:"endereco,omitempty"`
}

type cardResponse struct {
	Holder        string `json:"titular"`
	Brand         string `json:"bandeira"`
	LastDigits    string `json:"ultimosDigitos"`
	TransactionID string `json:"transacaoId"`
}

type paymentResponse struct {
	ID             int64          `json:"id"`
	ReservationID  *int64         `json:"reservaId,omitempty"`
	UserID         *int64         `json:"usuarioId,omitempty"`
	Status         string         `json:"status"`
	Amount         float64        `json:"valor"`
	IdempotencyKey string         `json:"chaveIdempotencia"`
	CreatedAt      time.Time      `json:"criadoEm"`
	Payer          *payerResponse `json:"pagador,omitempty"`
	Card           *cardResponse  `json:"cartao,omitempty"`
}

func newPaymentResponse(payment *payments.Payment) paymentResponse {
	resp := paymentResponse{
		ID:             payment.ID,
		ReservationID:  payment.ReservationID,
		UserID:         payment.UserID,
		Status:         payment.Status,
		Amount:         payment.Amount,
		IdempotencyKey: payment.IdempotencyKey,
		CreatedAt:      payment.CreatedAt,
	}
	if payment.Payer != nil {
		payer := payerResponse{Document: payment.Payer.Document, Name: payment.Payer.Name}
		if payment.Payer.Address != nil {
			address := newAddressResponse(*payment.Payer.Address)
			payer.Address = &address
		}
		resp.Payer = &payer
	}
	if payment.Card != nil {
		resp.Card = &cardResponse{
			Holder:        payment.Card.Holder,
			Brand:         payment.Card.Brand,
			LastDigits:    payment.Card.LastDigits,
			TransactionID: payment.Card.TransactionID,
		}
	}
	return resp
}

func (h *PaymentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	params := payments.CreateParams{
		ReservationID:  req.ReservationID,
		UserID:         req.UserID,
		Amount:         req.Amount,
		Status:         req.Status,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.Payer != nil {
		params.Payer = &payments.PayerParams{
			Document: req.Payer.Document,
			Name:     req.Payer.Name,
			Address:  req.Payer.Address.toSubmission(),
		}
	}
	if req.Card != nil {
		params.Card = &payments.CardParams{
			Holder:        req.Card.Holder,
			Brand:         req.Card.Brand,
			LastDigits:    req.Card.LastDigits,
			TransactionID: req.Card.TransactionID,
		}
	}

	created, err := h.Service.Create(r.Context(), params)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", paymentsBasePath, created.ID))
	writeJSON(w, http.StatusCreated, newPaymentResponse(created))
}

func (h *PaymentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, h.Env)
		return
	}

	payment, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newPaymentResponse(payment))
}

func (h *PaymentsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := paging.ParseParams(query)
	filters := payments.ParseFilters(query)

	page, err := h.Service.Search(r.Context(), filters, params)
	if err != nil {
		problem.Translate(w, r, err, h.Env)
		return
	}

	items := make([]paymentResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newPaymentResponse(&page.Items[i]))
	}
	result := paging.Page[paymentResponse]{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		Items:      items,
	}
	writeJSON(w, http.StatusOK, hypermedia.PageResource(result, paymentsBasePath+"/search", query))
}
