package lifecycle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cliniq/cliniq/internal/platform/db"
)

func newHandlerContext(t *testing.T, method, target, tenantID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), db.TenantIDKey, tenantID)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandlerResetAll(t *testing.T) {
	store := newFakeStore()
	seedFake(t, store, "clinic-a")
	h := NewHandler(newTestService(t, store))

	c, rec := newHandlerContext(t, http.MethodDelete, "/api/v1/transactions/reset-all", "clinic-a")
	if err := h.ResetAll(c); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Success   bool             `json:"success"`
		Message   string           `json:"message"`
		Deleted   map[string]int64 `json:"deleted"`
		Remaining map[string]int64 `json:"remaining"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Message == "" {
		t.Error("message is empty")
	}
	if len(resp.Deleted) != int(entityCount) {
		t.Errorf("deleted has %d keys, want %d", len(resp.Deleted), entityCount)
	}
	if resp.Deleted["staff"] != 5 {
		t.Errorf("deleted.staff = %d, want 5", resp.Deleted["staff"])
	}
	for k, v := range resp.Remaining {
		if v != 0 {
			t.Errorf("remaining.%s = %d, want 0", k, v)
		}
	}
}

func TestHandlerSeed(t *testing.T) {
	store := newFakeStore()
	h := NewHandler(newTestService(t, store))

	c, rec := newHandlerContext(t, http.MethodPost, "/api/v1/transactions/seed", "clinic-a")
	if err := h.Seed(c); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Success bool             `json:"success"`
		Created map[string]int64 `json:"created"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Created["staff"] != 5 {
		t.Errorf("created.staff = %d, want 5", resp.Created["staff"])
	}
	if resp.Created["patients"] != 12 {
		t.Errorf("created.patients = %d, want 12", resp.Created["patients"])
	}
	if resp.Created["loyaltyRewards"] != 8 {
		t.Errorf("created.loyaltyRewards = %d, want 8", resp.Created["loyaltyRewards"])
	}
	if resp.Created["appointments"] == 0 {
		t.Error("created.appointments = 0")
	}
}

func TestHandlerConflictWhenLocked(t *testing.T) {
	store := newFakeStore()
	h := NewHandler(newTestService(t, store))

	release, ok, err := store.TryLock(context.Background(), "clinic-a")
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer release()

	c, rec := newHandlerContext(t, http.MethodPost, "/api/v1/transactions/seed", "clinic-a")
	if err := h.Seed(c); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var resp struct {
		Error   string `json:"error"`
		Details string `json:"details"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Code != string(CodeOperationInProgress) {
		t.Errorf("code = %q, want %q", resp.Code, CodeOperationInProgress)
	}
	if resp.Error == "" || resp.Details == "" {
		t.Errorf("error envelope incomplete: %+v", resp)
	}
}

func TestHandlerInternalError(t *testing.T) {
	store := newFakeStore()
	store.failCopy[EntityStaff] = context.DeadlineExceeded
	h := NewHandler(newTestService(t, store))

	c, rec := newHandlerContext(t, http.MethodPost, "/api/v1/transactions/seed", "clinic-a")
	if err := h.Seed(c); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Code != string(CodeTimeout) {
		t.Errorf("code = %q, want TIMEOUT", resp.Code)
	}
}

func TestHandlerRoutesRegistered(t *testing.T) {
	store := newFakeStore()
	svc, err := New(store, Options{Timeout: time.Minute}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e := echo.New()
	e.Use(db.TenantMiddleware("default"))
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/seed", nil)
	req.Header.Set("X-Tenant-ID", "clinic-a")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("POST /api/v1/transactions/seed = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/reset-all", nil)
	req.Header.Set("X-Tenant-ID", "clinic-a")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("DELETE /api/v1/transactions/reset-all = %d, want 200", rec.Code)
	}
}
