package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBookingCreated_PostsPayload(t *testing.T) {
	var got BookingCreatedEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL)
	ev := BookingCreatedEvent{
		BookingID:     "b-1",
		WorkshopID:    "shop-1",
		CustomerID:    "cust-1",
		CustomerEmail: "ana@example.com",
		ScheduledAt:   time.Date(2025, 1, 30, 14, 30, 0, 0, time.UTC),
	}
	if err := d.BookingCreated(context.Background(), ev); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got.BookingID != "b-1" || got.CustomerEmail != "ana@example.com" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestBookingCreated_NonSuccessIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL)
	if err := d.BookingCreated(context.Background(), BookingCreatedEvent{BookingID: "b-1"}); err == nil {
		t.Fatalf("expected error for 502 response")
	}
}

func TestBookingCreated_EmptyURLIsNoOp(t *testing.T) {
	d := NewDispatcher("")
	if err := d.BookingCreated(context.Background(), BookingCreatedEvent{BookingID: "b-1"}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
