package calls

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"workshop-intake/internal/bookings"
	"workshop-intake/internal/notify"
	"workshop-intake/internal/voiceai"
	"workshop-intake/internal/workshops"
	"workshop-intake/pkg/logger"
	"workshop-intake/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("call not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrWorkshopBusy    = errors.New("workshop at concurrent call capacity")
)

// WorkshopDirectory resolves the tenant that owns a dialed platform number.
type WorkshopDirectory interface {
	FindActiveByNumber(ctx context.Context, phoneNumber string) (workshops.Workshop, error)
}

// BookingEngine derives booking rows on the call-ended transaction and
// reports the resolved customer alongside the booking.
type BookingEngine interface {
	CreateFromAnalysis(ctx context.Context, tx *sql.Tx, p bookings.CreateParams) (bookings.Booking, bookings.Customer, error)
}

// Notifier delivers post-commit booking notifications. Failures are logged
// by this service and never escalate.
type Notifier interface {
	BookingCreated(ctx context.Context, ev notify.BookingCreatedEvent) error
}

// CallSlots caps in-flight calls per workshop. Optional.
type CallSlots interface {
	Acquire(ctx context.Context, workshopID string) (bool, error)
	Release(ctx context.Context, workshopID string) error
}

// Service owns the call lifecycle: initiated on the inbound event,
// in_progress on call-started, completed plus analysis/booking on
// call-ended.
//
// Transaction discipline:
// - Call-ended processing (call update, analysis insert, booking derivation)
//   is one atomic unit via utils.WithTx.
// - The booking notification is explicitly outside that transaction.
type Service struct {
	db        *sql.DB
	directory WorkshopDirectory
	engine    BookingEngine
	notifier  Notifier
	slots     CallSlots
	assistant voiceai.AssistantBuilder

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB, directory WorkshopDirectory, engine BookingEngine, notifier Notifier, slots CallSlots, assistant voiceai.AssistantBuilder) *Service {
	return &Service{
		db:        db,
		directory: directory,
		engine:    engine,
		notifier:  notifier,
		slots:     slots,
		assistant: assistant,
		clock:     time.Now,
	}
}

// InboundResult is handed back to the platform: the new call id plus the
// assistant configuration to run the conversation with.
type InboundResult struct {
	CallID       string                  `json:"call_id"`
	WorkshopName string                  `json:"workshop_name"`
	Assistant    voiceai.AssistantConfig `json:"assistant"`
}

// HandleInboundCall registers a new call for the workshop owning the dialed
// number and builds its assistant configuration. It does not invoke the
// platform; the platform called us.
func (s *Service) HandleInboundCall(ctx context.Context, ev voiceai.InboundCallEvent) (InboundResult, error) {
	if err := ev.Validate(); err != nil {
		return InboundResult{}, ErrInvalidArgument
	}

	w, err := s.directory.FindActiveByNumber(ctx, strings.TrimSpace(ev.To))
	if err != nil {
		return InboundResult{}, err
	}

	if s.slots != nil {
		ok, err := s.slots.Acquire(ctx, w.ID)
		if err != nil {
			// Fail open: a broken limiter must not drop customer calls.
			logger.From(ctx).Warn("call slot acquire failed", "workshop_id", w.ID, "err", err)
		} else if !ok {
			return InboundResult{}, ErrWorkshopBusy
		}
	}

	now := s.clock().UTC()
	call := Call{
		ID:             uuid.NewString(),
		WorkshopID:     w.ID,
		FromNumber:     strings.TrimSpace(ev.From),
		ToNumber:       strings.TrimSpace(ev.To),
		ExternalCallID: strings.TrimSpace(ev.ExternalCallID),
		Status:         StatusInitiated,
		StartedAt:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := insertCall(ctx, s.db, call); err != nil {
		s.releaseSlot(ctx, w.ID)
		return InboundResult{}, err
	}

	return InboundResult{
		CallID:       call.ID,
		WorkshopName: w.Name,
		Assistant:    s.assistant.Build(w.Name, call.ID, w.ID),
	}, nil
}

// HandleCallStarted moves the call to in_progress and records the answer time.
func (s *Service) HandleCallStarted(ctx context.Context, callID string) error {
	if callID == "" {
		return ErrInvalidArgument
	}
	return markCallInProgress(ctx, s.db, callID, s.clock().UTC())
}

// ProcessCallEnded applies the terminal call state, records the analysis and,
// when the extraction confirms a booking with a customer name, derives the
// booking — all in one transaction. The caller has already acknowledged the
// webhook; errors here are for logs only.
func (s *Service) ProcessCallEnded(ctx context.Context, callID string, result *voiceai.CallResult, analysis *voiceai.Analysis) error {
	if callID == "" {
		return ErrInvalidArgument
	}

	log := logger.From(ctx)
	now := s.clock().UTC()

	if result == nil {
		result = &voiceai.CallResult{}
	}
	var data voiceai.StructuredData
	sentiment := "neutral"
	if analysis != nil {
		data = analysis.StructuredData
		if strings.TrimSpace(analysis.Sentiment) != "" {
			sentiment = analysis.Sentiment
		}
	}

	var workshopID string
	var booking bookings.Booking
	var customer bookings.Customer
	bookingCreated := false

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		wid, err := completeCall(ctx, tx, callID,
			now,
			result.DurationSeconds,
			costToCents(result.Cost),
			result.RecordingURL,
			result.Transcript,
		)
		if err != nil {
			return err
		}
		workshopID = wid

		row := Analysis{
			ID:               uuid.NewString(),
			CallID:           callID,
			CustomerName:     data.CustomerName,
			CustomerPhone:    data.CustomerPhone,
			CustomerEmail:    data.CustomerEmail,
			VehicleMake:      data.VehicleMake,
			VehicleModel:     data.VehicleModel,
			VehicleYear:      data.VehicleYear,
			IssueSummary:     data.IssueSummary,
			IssueCategory:    data.IssueCategory,
			Urgency:          data.Urgency,
			PreferredDate:    data.PreferredDate,
			PreferredTime:    data.PreferredTime,
			BookingConfirmed: data.BookingConfirmed,
			Sentiment:        sentiment,
			BookingCreated:   false,
			CreatedAt:        now,
		}
		if err := insertAnalysis(ctx, tx, row); err != nil {
			return err
		}

		if data.BookingConfirmed && strings.TrimSpace(data.CustomerName) != "" {
			b, cust, err := s.engine.CreateFromAnalysis(ctx, tx, bookings.CreateParams{
				WorkshopID: workshopID,
				CallID:     callID,
				AnalysisID: row.ID,
				Data:       data,
			})
			if err != nil {
				return err
			}
			booking = b
			customer = cust
			bookingCreated = true
		}
		return nil
	})

	if workshopID != "" {
		// The physical call is over either way; give the slot back and let
		// the TTL mop up the cases where we never learned the workshop.
		s.releaseSlot(ctx, workshopID)
	}
	if err != nil {
		return err
	}

	if bookingCreated && s.notifier != nil {
		// Prefer the customer's stored email; a repeat caller may not have
		// repeated it on this call.
		email := customer.Email
		if email == "" {
			email = data.CustomerEmail
		}
		// Post-commit, isolated failure channel: the booking exists no
		// matter what happens to the notification.
		go func(ev notify.BookingCreatedEvent) {
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := s.notifier.BookingCreated(nctx, ev); err != nil {
				log.Warn("booking notification failed",
					"booking_id", ev.BookingID,
					"workshop_id", ev.WorkshopID,
					"err", err,
				)
			}
		}(notify.BookingCreatedEvent{
			BookingID:     booking.ID,
			WorkshopID:    booking.WorkshopID,
			CustomerID:    booking.CustomerID,
			CustomerEmail: email,
			ScheduledAt:   booking.ScheduledAt,
		})
	}

	return nil
}

// GetCallDetail returns the call joined with workshop name and analysis.
func (s *Service) GetCallDetail(ctx context.Context, callID string) (CallDetail, error) {
	if callID == "" {
		return CallDetail{}, ErrInvalidArgument
	}
	return getCallDetail(ctx, s.db, callID)
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListWorkshopCalls returns one page of a workshop's calls with the total count.
func (s *Service) ListWorkshopCalls(ctx context.Context, workshopID string, f ListFilter) (CallPage, error) {
	if workshopID == "" {
		return CallPage{}, ErrInvalidArgument
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Status != "" && !isValidStatus(f.Status) {
		return CallPage{}, ErrInvalidArgument
	}

	items, total, err := listWorkshopCalls(ctx, s.db, workshopID, f)
	if err != nil {
		return CallPage{}, err
	}
	return CallPage{Calls: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *Service) releaseSlot(ctx context.Context, workshopID string) {
	if s.slots == nil || workshopID == "" {
		return
	}
	if err := s.slots.Release(ctx, workshopID); err != nil {
		logger.From(ctx).Warn("call slot release failed", "workshop_id", workshopID, "err", err)
	}
}

func isValidStatus(st CallStatus) bool {
	switch st {
	case StatusInitiated, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

func costToCents(cost float64) int64 {
	return int64(math.Round(cost * 100))
}
