package calls

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"workshop-intake/internal/bookings"
	"workshop-intake/internal/notify"
	"workshop-intake/internal/voiceai"
	"workshop-intake/internal/workshops"
)

// Validation and the pre-SQL failure paths run against a nil DB; the
// transactional call-ended unit runs against the scripted testdb driver
// (see service_tx_test.go). Read queries use Postgres-specific SQL
// (lateral joins) and stay with the integration suite.

type stubDirectory struct {
	workshop workshops.Workshop
	err      error
}

func (d stubDirectory) FindActiveByNumber(ctx context.Context, n string) (workshops.Workshop, error) {
	return d.workshop, d.err
}

type stubSlots struct {
	ok       bool
	err      error
	released []string
}

func (s *stubSlots) Acquire(ctx context.Context, workshopID string) (bool, error) {
	return s.ok, s.err
}

func (s *stubSlots) Release(ctx context.Context, workshopID string) error {
	s.released = append(s.released, workshopID)
	return nil
}

type stubNotifier struct{ err error }

func (n stubNotifier) BookingCreated(ctx context.Context, ev notify.BookingCreatedEvent) error {
	return n.err
}

type stubEngine struct {
	booking  bookings.Booking
	customer bookings.Customer
	err      error
}

func (e stubEngine) CreateFromAnalysis(ctx context.Context, tx *sql.Tx, p bookings.CreateParams) (bookings.Booking, bookings.Customer, error) {
	return e.booking, e.customer, e.err
}

func newTestService(dir WorkshopDirectory, slots CallSlots) *Service {
	return NewService((*sql.DB)(nil), dir, stubEngine{}, stubNotifier{}, slots, voiceai.NewAssistantBuilder("https://example.com/webhooks/voice"))
}

func TestHandleInboundCall_RejectsInvalidEvent(t *testing.T) {
	svc := newTestService(stubDirectory{}, nil)

	_, err := svc.HandleInboundCall(context.Background(), voiceai.InboundCallEvent{From: "+1", To: "+2"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestHandleInboundCall_UnknownNumberPropagatesNotFound(t *testing.T) {
	svc := newTestService(stubDirectory{err: workshops.ErrNotFound}, nil)

	_, err := svc.HandleInboundCall(context.Background(), voiceai.InboundCallEvent{
		From: "+15551230000", To: "+15550000000", ExternalCallID: "ext-1",
	})
	if !errors.Is(err, workshops.ErrNotFound) {
		t.Fatalf("expected workshops.ErrNotFound, got %v", err)
	}
}

func TestHandleInboundCall_BusyWhenCapRejects(t *testing.T) {
	dir := stubDirectory{workshop: workshops.Workshop{ID: "shop-1", Name: "Joe's Garage"}}
	svc := newTestService(dir, &stubSlots{ok: false})

	_, err := svc.HandleInboundCall(context.Background(), voiceai.InboundCallEvent{
		From: "+15551230000", To: "+15559870000", ExternalCallID: "ext-1",
	})
	if !errors.Is(err, ErrWorkshopBusy) {
		t.Fatalf("expected ErrWorkshopBusy, got %v", err)
	}
}

func TestHandleCallStarted_RejectsEmptyID(t *testing.T) {
	svc := newTestService(stubDirectory{}, nil)
	if err := svc.HandleCallStarted(context.Background(), ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestProcessCallEnded_RejectsEmptyID(t *testing.T) {
	svc := newTestService(stubDirectory{}, nil)
	if err := svc.ProcessCallEnded(context.Background(), "", nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestListWorkshopCalls_RejectsBadArgs(t *testing.T) {
	svc := newTestService(stubDirectory{}, nil)

	if _, err := svc.ListWorkshopCalls(context.Background(), "", ListFilter{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty workshop, got %v", err)
	}
	if _, err := svc.ListWorkshopCalls(context.Background(), "shop-1", ListFilter{Status: "ringing"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown status, got %v", err)
	}
}

func TestGetCallDetail_RejectsEmptyID(t *testing.T) {
	svc := newTestService(stubDirectory{}, nil)
	if _, err := svc.GetCallDetail(context.Background(), ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCostToCents(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{0.42, 42},
		{1.05, 105},
		{12.3, 1230},
	}
	for _, tc := range cases {
		if got := costToCents(tc.in); got != tc.want {
			t.Fatalf("costToCents(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
