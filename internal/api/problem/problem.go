// Package problem renders RFC 7807 problem+json responses and is the
// single place where domain errors become HTTP statuses.
package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/easypark/server/internal/domain/facilities"
	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/payments"
	"github.com/easypark/server/internal/domain/reservations"
	"github.com/easypark/server/internal/domain/spaces"
	"github.com/easypark/server/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

type ProblemDetails struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   int            `json:"status"`
	Detail   string         `json:"detail,omitempty"`
	Instance string         `json:"instance,omitempty"`
	Errors   map[string]any `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithErrors(errs map[string]any) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Translate maps a domain error to its response. Validation and business
// rule violations become 400s with their own message; missing references
// become 404s; integrity violations surface the constraint detail;
// anything else is a 500 whose detail is hidden outside development.
func Translate(w http.ResponseWriter, r *http.Request, err error, env string) {
	var (
		validation  geo.ValidationError
		fieldErrs   validator.ValidationErrors
		integrity   *storage.IntegrityError
		notFound    = isNotFound(err)
		businessErr = errors.Is(err, spaces.ErrDuplicateCode)
	)

	switch {
	case errors.As(err, &validation):
		Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, env,
			WithDetail(validation.Error()),
			WithErrors(map[string]any{validation.Field: validation.Message}),
		)
	case errors.As(err, &fieldErrs):
		details := make(map[string]any, len(fieldErrs))
		for _, fieldErr := range fieldErrs {
			details[fieldErr.Field()] = fmt.Sprintf("failed %q validation", fieldErr.Tag())
		}
		Write(w, r, http.StatusBadRequest, "validation-error", "Requisição inválida", err, env,
			WithErrors(details))
	case businessErr:
		Write(w, r, http.StatusBadRequest, "business-rule", "Regra de negócio violada", err, env,
			WithDetail(err.Error()))
	case notFound:
		Write(w, r, http.StatusNotFound, "not-found", "Recurso não encontrado", err, env,
			WithDetail(err.Error()))
	case errors.As(err, &integrity):
		Write(w, r, http.StatusBadRequest, "data-integrity", "Violação de integridade de dados", err, env,
			WithDetail(integrity.Error()))
	default:
		Write(w, r, http.StatusInternalServerError, "server-error", "Erro interno", err, env)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, facilities.ErrNotFound) ||
		errors.Is(err, spaces.ErrNotFound) ||
		errors.Is(err, spaces.ErrLevelNotFound) ||
		errors.Is(err, spaces.ErrSpaceTypeNotFound) ||
		errors.Is(err, reservations.ErrNotFound) ||
		errors.Is(err, reservations.ErrUserNotFound) ||
		errors.Is(err, reservations.ErrSpaceNotFound) ||
		errors.Is(err, payments.ErrNotFound) ||
		errors.Is(err, payments.ErrReservationNotFound) ||
		errors.Is(err, payments.ErrUserNotFound) ||
		errors.Is(err, geo.ErrNotFound)
}

func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil {
		if env == "development" || env == "test" {
			problem.Detail = err.Error()
		} else {
			problem.Detail = http.StatusText(status)
		}
	}

	if problem.Instance == "" && r != nil {
		problem.Instance = r.URL.Path
	}

	if err != nil && status >= 500 {
		logger := zerolog.Ctx(r.Context())
		logger.Error().
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	} else if err != nil && status >= 400 {
		logger := zerolog.Ctx(r.Context())
		logger.Warn().
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, problem)
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}
