package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newAdminRouter(svc *Service) http.Handler {
	h := &AdminHandler{Svc: svc}
	r := chi.NewRouter()
	r.Patch("/admin/orders/{orderId}/status", h.PatchStatus)
	return r
}

func patchStatus(t *testing.T, router http.Handler, orderID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/admin/orders/"+orderID+"/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPatchStatusAppendsEntry(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	o := mustBuild(t, svc)
	router := newAdminRouter(svc)

	rec := patchStatus(t, router, o.ID, `{"status":"shipped"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			OrderID       string        `json:"orderId"`
			Status        Status        `json:"status"`
			Appended      bool          `json:"appended"`
			TrackingEntry TrackingEntry `json:"trackingEntry"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, o.ID, body.Data.OrderID)
	require.Equal(t, StatusShipped, body.Data.Status)
	require.True(t, body.Data.Appended)
	require.Equal(t, "China", body.Data.TrackingEntry.Location)
}

func TestPatchStatusSameStatusReturnsOK(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	o := mustBuild(t, svc)
	router := newAdminRouter(svc)

	rec := patchStatus(t, router, o.ID, `{"status":"pending"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, stored.TrackingHistory, 1)
}

func TestPatchStatusUnknownOrderIs404(t *testing.T) {
	svc := newTestService(newMemStore())
	router := newAdminRouter(svc)

	rec := patchStatus(t, router, "missing", `{"status":"shipped"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatchStatusInvalidStatusIs400(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	o := mustBuild(t, svc)
	router := newAdminRouter(svc)

	rec := patchStatus(t, router, o.ID, `{"status":"teleported"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = patchStatus(t, router, o.ID, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = patchStatus(t, router, o.ID, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchStatusIllegalTransitionIs409(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	o := mustBuild(t, svc)
	router := newAdminRouter(svc)

	rec := patchStatus(t, router, o.ID, `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = patchStatus(t, router, o.ID, `{"status":"shipped"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
}
