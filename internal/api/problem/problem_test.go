package problem

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/easypark/server/internal/domain/facilities"
	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/spaces"
	"github.com/easypark/server/internal/storage"
	"github.com/stretchr/testify/require"
)

func translate(t *testing.T, err error, env string) (int, ProblemDetails) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/test", nil)

	Translate(rec, req, err, env)

	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var details ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	return rec.Code, details
}

func TestTranslateValidationError(t *testing.T) {
	status, details := translate(t, geo.ValidationError{Field: "city", Message: "is required"}, "production")

	require.Equal(t, 400, status)
	require.Equal(t, "validation-error", details.Type)
	require.Equal(t, "is required", details.Errors["city"])
}

func TestTranslateNotFound(t *testing.T) {
	status, details := translate(t, facilities.ErrNotFound, "production")

	require.Equal(t, 404, status)
	require.Equal(t, "not-found", details.Type)
	require.Equal(t, "estacionamento não encontrado", details.Detail)
}

func TestTranslateBusinessRule(t *testing.T) {
	status, details := translate(t, spaces.ErrDuplicateCode, "production")

	require.Equal(t, 400, status)
	require.Equal(t, "business-rule", details.Type)
}

func TestTranslateIntegrityError(t *testing.T) {
	err := &storage.IntegrityError{Constraint: "cidade_nome_uf_sigla_key", Detail: "duplicate key"}
	status, details := translate(t, err, "production")

	require.Equal(t, 400, status)
	require.Equal(t, "data-integrity", details.Type)
	require.Contains(t, details.Detail, "cidade_nome_uf_sigla_key")
}

func TestTranslateUnexpectedHidesDetailInProduction(t *testing.T) {
	status, details := translate(t, errors.New("pool exhausted"), "production")

	require.Equal(t, 500, status)
	require.Equal(t, "server-error", details.Type)
	require.NotContains(t, details.Detail, "pool exhausted")
}

func TestTranslateUnexpectedShowsDetailInDevelopment(t *testing.T) {
	_, details := translate(t, errors.New("pool exhausted"), "development")

	require.Equal(t, "pool exhausted", details.Detail)
}
