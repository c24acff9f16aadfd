package session

import (
	"errors"
	"testing"

	"github.com/ktuntum/statement-ocr/internal/extract"
)

func TestNew_StartsIdle(t *testing.T) {
	s := New()

	state := s.Snapshot()
	if state.Status != StatusIdle {
		t.Errorf("initial status = %q, want idle", state.Status)
	}
	if len(state.Transactions) != 0 || state.Error != "" || state.Filename != "" {
		t.Errorf("initial state not empty: %+v", state)
	}
}

func TestBegin_FromIdle(t *testing.T) {
	s := New()

	if err := s.Begin("statement.pdf"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	state := s.Snapshot()
	if state.Status != StatusProcessing {
		t.Errorf("status = %q, want processing", state.Status)
	}
	if state.Filename != "statement.pdf" {
		t.Errorf("filename = %q, want statement.pdf", state.Filename)
	}
}

func TestBegin_RejectedWhileProcessing(t *testing.T) {
	s := New()

	if err := s.Begin("first.pdf"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	// A second file selection while the first is in flight has no effect.
	err := s.Begin("second.pdf")
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	state := s.Snapshot()
	if state.Filename != "first.pdf" {
		t.Errorf("filename = %q, rejected Begin must not mutate state", state.Filename)
	}
}

func TestSucceed_StoresTransactions(t *testing.T) {
	s := New()
	s.Begin("statement.pdf")

	txs := []extract.Transaction{
		{Date: "2024-01-05", Description: "Coffee", Amount: -4.5, Category: "Dining"},
	}
	s.Succeed(txs)

	state := s.Snapshot()
	if state.Status != StatusSuccess {
		t.Fatalf("status = %q, want success", state.Status)
	}
	if len(state.Transactions) != 1 || state.Transactions[0].Description != "Coffee" {
		t.Errorf("transactions = %+v", state.Transactions)
	}
	if state.Error != "" {
		t.Errorf("success state must not carry an error, got %q", state.Error)
	}
}

func TestFail_StoresGenericMessageOnly(t *testing.T) {
	s := New()
	s.Begin("statement.pdf")
	s.Fail()

	state := s.Snapshot()
	if state.Status != StatusError {
		t.Fatalf("status = %q, want error", state.Status)
	}
	if state.Error != GenericFailureMessage {
		t.Errorf("error = %q, want the fixed generic message", state.Error)
	}
	if len(state.Transactions) != 0 {
		t.Errorf("error state must not retain data, got %+v", state.Transactions)
	}
}

func TestReset(t *testing.T) {
	tests := []struct {
		name   string
		settle func(s *Session)
	}{
		{"from success", func(s *Session) {
			s.Succeed([]extract.Transaction{{Date: "2024-01-05", Amount: 1, Description: "x", Category: "Transfer"}})
		}},
		{"from error", func(s *Session) { s.Fail() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Begin("statement.pdf")
			tt.settle(s)

			if err := s.Reset(); err != nil {
				t.Fatalf("Reset failed: %v", err)
			}

			state := s.Snapshot()
			if state.Status != StatusIdle || state.Filename != "" || state.Error != "" || len(state.Transactions) != 0 {
				t.Errorf("reset state = %+v, want pristine idle", state)
			}
		})
	}
}

func TestReset_RejectedWhileProcessing(t *testing.T) {
	s := New()
	s.Begin("statement.pdf")

	if err := s.Reset(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if got := s.Snapshot().Status; got != StatusProcessing {
		t.Errorf("status = %q, reset must not abort the in-flight call", got)
	}
}

func TestBegin_ImplicitResetAfterSettlement(t *testing.T) {
	s := New()
	s.Begin("first.pdf")
	s.Fail()

	if err := s.Begin("second.pdf"); err != nil {
		t.Fatalf("Begin after error failed: %v", err)
	}

	state := s.Snapshot()
	if state.Status != StatusProcessing || state.Filename != "second.pdf" || state.Error != "" {
		t.Errorf("state = %+v, previous error must be cleared", state)
	}
}

func TestSettle_IgnoredWithoutBegin(t *testing.T) {
	s := New()

	s.Succeed([]extract.Transaction{{Date: "2024-01-05"}})
	if got := s.Snapshot().Status; got != StatusIdle {
		t.Errorf("status = %q, settle without begin must be ignored", got)
	}

	s.Fail()
	if got := s.Snapshot().Status; got != StatusIdle {
		t.Errorf("status = %q, settle without begin must be ignored", got)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New()
	s.Begin("statement.pdf")
	s.Succeed([]extract.Transaction{{Date: "2024-01-05", Description: "Coffee", Amount: -4.5, Category: "Dining"}})

	snap := s.Snapshot()
	snap.Transactions[0].Description = "mutated"

	if s.Snapshot().Transactions[0].Description != "Coffee" {
		t.Error("snapshot mutation leaked into session state")
	}
}
