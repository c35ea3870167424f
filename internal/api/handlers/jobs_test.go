package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/easypark/server/internal/domain/jobs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeJobsRepo struct {
	cancelled      int
	etaReservation int64
	etaMinutes     int
	etaResult      jobs.ETAResult
}

func (r *fakeJobsRepo) CancelExpiredReservations(ctx context.Context) (int, error) {
	return r.cancelled, nil
}

func (r *fakeJobsRepo) CancelExpiredPreReservations(ctx context.Context) (int, error) {
	return r.cancelled, nil
}

func (r *fakeJobsRepo) UpdateReservationETA(ctx context.Context, reservationID int64, minutes int) (jobs.ETAResult, error) {
	r.etaReservation = reservationID
	r.etaMinutes = minutes
	return r.etaResult, nil
}

func newJobsHandler(repo *fakeJobsRepo) *JobsHandler {
	return NewJobsHandler(jobs.NewService(repo, zerolog.Nop()), "test")
}

func TestReservationTimeoutsReportsCount(t *testing.T) {
	handler := newJobsHandler(&fakeJobsRepo{cancelled: 3})

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/reservas/timeouts", nil)
	rec := httptest.NewRecorder()
	handler.ReservationTimeouts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 3, body["canceladas"])
}

func TestUpdateETAPassesParameters(t *testing.T) {
	repo := &fakeJobsRepo{etaResult: jobs.ETAResult{Status: "OK", Message: "ETA atualizado"}}
	handler := newJobsHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/reservas/7/eta?minutos=15", nil)
	req.SetPathValue("id", "7")
	rec := httptest.NewRecorder()
	handler.UpdateETA(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 7, repo.etaReservation)
	require.Equal(t, 15, repo.etaMinutes)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "OK", body["status"])
	require.Equal(t, "ETA atualizado", body["mensagem"])
}

func TestUpdateETARejectsBadMinutes(t *testing.T) {
	handler := newJobsHandler(&fakeJobsRepo{})

	for _, minutos := range []string{"", "0", "-5", "abc"} {
		req := httptest.NewRequest(http.MethodPost, "/api/jobs/reservas/7/eta?minutos="+minutos, nil)
		req.SetPathValue("id", "7")
		rec := httptest.NewRecorder()
		handler.UpdateETA(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, "minutos=%q", minutos)
	}
}

func TestUpdateETARejectsBadID(t *testing.T) {
	handler := newJobsHandler(&fakeJobsRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/reservas/abc/eta?minutos=10", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()
	handler.UpdateETA(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
