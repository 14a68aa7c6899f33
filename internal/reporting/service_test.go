package reporting

import (
	"context"
	"errors"
	"testing"
	"time"
)

// The aggregate SQL uses Postgres FILTER clauses and is covered by
// integration tests. Unit tests cover input validation only.

func TestWorkshopStats_EmptyWorkshopID(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.WorkshopStats(context.Background(), "", nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWorkshopStats_InvertedWindow(t *testing.T) {
	svc := NewService(nil)
	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.WorkshopStats(context.Background(), "ws-1", &from, &to); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for inverted window, got %v", err)
	}
}
