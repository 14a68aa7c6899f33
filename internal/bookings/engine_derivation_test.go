package bookings

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"workshop-intake/internal/testdb"
	"workshop-intake/internal/voiceai"
)

// Derivation runs against the scripted testdb driver so the dedup decision
// (select before insert) is observable in the recorded statements.

func beginTestTx(t *testing.T, responses ...testdb.Response) (*sql.Tx, *testdb.Recorder) {
	t.Helper()
	db, rec := testdb.Open(responses...)
	t.Cleanup(func() { db.Close() })
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx, rec
}

func TestCreateFromAnalysis_ReusesExistingCustomer(t *testing.T) {
	stored := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	tx, rec := beginTestTx(t,
		testdb.Response{
			Match: "FROM customers",
			Cols:  []string{"id", "workshop_id", "name", "phone", "email", "created_at"},
			Rows: [][]driver.Value{
				{"cust-1", "shop-1", "Ana Petrov", "+15551230000", "ana@example.com", stored},
			},
		},
		testdb.Response{Match: "INSERT INTO bookings", RowsAffected: 1},
		testdb.Response{Match: "UPDATE call_analysis", RowsAffected: 1},
	)

	e := NewEngine()
	booking, customer, err := e.CreateFromAnalysis(context.Background(), tx, CreateParams{
		WorkshopID: "shop-1", CallID: "call-2", AnalysisID: "an-2",
		Data: voiceai.StructuredData{
			// Second call from the same number; no email extracted this time.
			CustomerName:     "Ana Petrov",
			CustomerPhone:    "+15551230000",
			BookingConfirmed: true,
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if customer.ID != "cust-1" {
		t.Fatalf("expected the existing customer to be reused, got %q", customer.ID)
	}
	if customer.Email != "ana@example.com" {
		t.Fatalf("expected the stored email on the resolved customer, got %q", customer.Email)
	}
	if booking.CustomerID != "cust-1" {
		t.Fatalf("expected booking to link the existing customer, got %q", booking.CustomerID)
	}
	if rec.Saw("INSERT INTO customers") {
		t.Fatalf("expected no customer insert for a known phone, saw %v", rec.Statements)
	}
}

func TestCreateFromAnalysis_InsertsUnknownCustomer(t *testing.T) {
	tx, rec := beginTestTx(t,
		testdb.Response{
			Match: "FROM customers",
			Cols:  []string{"id", "workshop_id", "name", "phone", "email", "created_at"},
		},
		testdb.Response{Match: "INSERT INTO customers", RowsAffected: 1},
		testdb.Response{Match: "INSERT INTO vehicles", RowsAffected: 1},
		testdb.Response{Match: "INSERT INTO bookings", RowsAffected: 1},
		testdb.Response{Match: "UPDATE call_analysis", RowsAffected: 1},
	)

	e := NewEngine()
	booking, customer, err := e.CreateFromAnalysis(context.Background(), tx, CreateParams{
		WorkshopID: "shop-1", CallID: "call-1", AnalysisID: "an-1",
		Data: voiceai.StructuredData{
			CustomerName:     "Ben Okafor",
			CustomerPhone:    "+15557770000",
			CustomerEmail:    "ben@example.com",
			VehicleMake:      "Toyota",
			VehicleModel:     "Corolla",
			BookingConfirmed: true,
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !rec.Saw("INSERT INTO customers") {
		t.Fatalf("expected a customer insert, saw %v", rec.Statements)
	}
	if customer.Email != "ben@example.com" {
		t.Fatalf("expected extraction email on the new customer, got %q", customer.Email)
	}
	if booking.VehicleID == "" {
		t.Fatalf("expected a vehicle for make+model extraction")
	}
	if booking.CustomerID != customer.ID {
		t.Fatalf("booking customer %q does not match resolved customer %q", booking.CustomerID, customer.ID)
	}
}
