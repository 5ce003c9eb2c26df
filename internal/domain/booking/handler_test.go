package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbx/kbx-api/internal/middleware"
)

func doJSON(t *testing.T, h http.HandlerFunc, method, target string, body interface{}, f *fixture) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	ctx := context.WithValue(req.Context(), middleware.TenantIDKey, f.tenantID)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestCreateHandlerReturns409WithConflicts(t *testing.T) {
	f := newFixture()
	existing := confirmed(f.room1, at(monday, 18, 0), at(monday, 20, 0))
	f.repo.bookings = []Booking{existing}
	h := NewHandler(f.svc)

	rr := doJSON(t, h.Create, http.MethodPost, "/bookings", CreateRequest{
		RoomID:       f.room1,
		CustomerName: "Dana",
		StartTime:    at(monday, 19, 0),
		EndTime:      at(monday, 21, 0),
	}, f)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Code      string    `json:"code"`
			Conflicts []Booking `json:"conflicts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatal("conflict response must not be marked successful")
	}
	if resp.Data.Code != "OCCUPIED" || len(resp.Data.Conflicts) != 1 {
		t.Fatalf("expected OCCUPIED with 1 conflict, got %+v", resp.Data)
	}
}

func TestCreateHandlerReturns400OutsideHours(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	rr := doJSON(t, h.Create, http.MethodPost, "/bookings", CreateRequest{
		RoomID:       f.room1,
		CustomerName: "Dana",
		StartTime:    at(monday, 21, 0),
		EndTime:      at(monday, 23, 0),
	}, f)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("OUTSIDE_BUSINESS_HOURS")) {
		t.Fatalf("expected OUTSIDE_BUSINESS_HOURS code, got %s", rr.Body.String())
	}
}

func TestMoveHandlerReportsPlanType(t *testing.T) {
	f := newFixture()
	a := confirmed(f.room1, at(monday, 18, 0), at(monday, 20, 0))
	b := confirmed(f.room2, at(monday, 19, 0), at(monday, 21, 0))
	f.repo.bookings = []Booking{a, b}
	h := NewHandler(f.svc)

	// chi URL params are not in play here; route through the router instead
	router := h.Routes(func(next http.Handler) http.Handler { return next })

	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(MoveRequest{
		RoomID:    f.room2,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/%s/move", a.ID), &buf)
	req = req.WithContext(context.WithValue(req.Context(), middleware.TenantIDKey, f.tenantID))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Data MoveResult `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Plan.Type != PlanSwap {
		t.Fatalf("expected swap plan in response, got %s", resp.Data.Plan.Type)
	}
}

func TestMoveHandlerRejectedPlanIs400(t *testing.T) {
	f := newFixture()
	a := confirmed(f.room1, at(monday, 18, 0), at(monday, 20, 0))
	b1 := confirmed(f.room2, at(monday, 18, 0), at(monday, 19, 0))
	b2 := confirmed(f.room2, at(monday, 19, 0), at(monday, 20, 0))
	f.repo.bookings = []Booking{a, b1, b2}
	h := NewHandler(f.svc)

	router := h.Routes(func(next http.Handler) http.Handler { return next })

	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(MoveRequest{
		RoomID:    f.room2,
		StartTime: at(monday, 18, 0),
		EndTime:   at(monday, 20, 0),
	})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/%s/move", a.ID), &buf)
	req = req.WithContext(context.WithValue(req.Context(), middleware.TenantIDKey, f.tenantID))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("MULTIPLE_CONFLICTS")) {
		t.Fatalf("expected MULTIPLE_CONFLICTS reason, got %s", rr.Body.String())
	}
}

func TestUpdateHandlerConflictingRevivalIs409(t *testing.T) {
	f := newFixture()
	b := confirmed(f.room1, at(monday, 18, 0), at(monday, 20, 0))
	b.Status = StatusCancelled
	f.repo.bookings = []Booking{b}
	f.repo.updateErr = ErrConcurrentConflict
	h := NewHandler(f.svc)

	router := h.Routes(func(next http.Handler) http.Handler { return next })

	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(UpdateRequest{Status: string(StatusConfirmed)})
	req := httptest.NewRequest(http.MethodPut, "/"+b.ID.String(), &buf)
	req = req.WithContext(context.WithValue(req.Context(), middleware.TenantIDKey, f.tenantID))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCancelHandlerReturns204(t *testing.T) {
	f := newFixture()
	b := confirmed(f.room1, at(monday, 18, 0), at(monday, 20, 0))
	f.repo.bookings = []Booking{b}
	h := NewHandler(f.svc)

	router := h.Routes(func(next http.Handler) http.Handler { return next })

	req := httptest.NewRequest(http.MethodDelete, "/"+b.ID.String(), nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.TenantIDKey, f.tenantID))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}
	if f.repo.bookings[0].Status != StatusCancelled {
		t.Fatalf("expected booking cancelled, got %s", f.repo.bookings[0].Status)
	}
}
