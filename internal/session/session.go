package session

import (
	"errors"
	"sync"

	"github.com/ktuntum/statement-ocr/internal/extract"
)

// Status is the processing status of the single active session.
type Status string

const (
	// StatusIdle is the initial state; a new document may be submitted.
	StatusIdle Status = "idle"
	// StatusProcessing means one extraction is in flight.
	StatusProcessing Status = "processing"
	// StatusSuccess carries the extracted transactions.
	StatusSuccess Status = "success"
	// StatusError carries the fixed user-facing message.
	StatusError Status = "error"
)

// GenericFailureMessage is the only failure text ever shown to the
// user; the precise cause is logged, not exposed.
const GenericFailureMessage = "Failed to process the document. Please ensure it's a clear image or PDF of a bank statement."

// ErrBusy is returned when a transition is attempted while an
// extraction is still in flight.
var ErrBusy = errors.New("an analysis is already in progress")

// State is one snapshot of the processing state machine. Data is empty
// unless status is success; Error is set only when status is error.
type State struct {
	Status       Status                `json:"status"`
	Filename     string                `json:"filename,omitempty"`
	Transactions []extract.Transaction `json:"transactions"`
	Error        string                `json:"error,omitempty"`
}

// Session is the four-state machine governing one operation at a time.
// The state value is only ever replaced wholesale under the mutex, so
// snapshots never observe a torn state.
type Session struct {
	mu    sync.Mutex
	state State
}

// New creates a session in the idle state.
func New() *Session {
	return &Session{state: idleState()}
}

// Begin records the chosen filename and moves to processing. It is
// allowed from idle, and from success or error (selecting a new file
// implicitly resets); it fails with ErrBusy while processing, which is
// what keeps at most one extraction in flight.
func (s *Session) Begin(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status == StatusProcessing {
		return ErrBusy
	}

	s.state = State{
		Status:       StatusProcessing,
		Filename:     filename,
		Transactions: []extract.Transaction{},
	}
	return nil
}

// Succeed settles the in-flight operation with the extracted
// transactions. A settle without a matching Begin is ignored.
func (s *Session) Succeed(txs []extract.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status != StatusProcessing {
		return
	}
	if txs == nil {
		txs = []extract.Transaction{}
	}

	s.state = State{
		Status:       StatusSuccess,
		Filename:     s.state.Filename,
		Transactions: txs,
	}
}

// Fail settles the in-flight operation with the fixed generic message.
// The underlying cause never reaches the state.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status != StatusProcessing {
		return
	}

	s.state = State{
		Status:       StatusError,
		Filename:     s.state.Filename,
		Transactions: []extract.Transaction{},
		Error:        GenericFailureMessage,
	}
}

// Reset discards any held data and returns to idle. It fails with
// ErrBusy while processing: the in-flight call is never aborted.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status == StatusProcessing {
		return ErrBusy
	}

	s.state = idleState()
	return nil
}

// Snapshot returns a copy of the current state. The transaction slice
// is copied so callers cannot mutate session data.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	snap.Transactions = make([]extract.Transaction, len(s.state.Transactions))
	copy(snap.Transactions, s.state.Transactions)
	return snap
}

func idleState() State {
	return State{
		Status:       StatusIdle,
		Transactions: []extract.Transaction{},
	}
}
