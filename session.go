package transfer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/transfertypes"
)

// validTransitions encodes the session lifecycle. A session leaves Pending
// when staging starts, moves to Uploading once the source is fully staged,
// and ends in exactly one terminal state. Failed and Aborted are reachable
// from any non-terminal state.
var validTransitions = map[transfertypes.State][]transfertypes.State{
	transfertypes.StatePending: {
		transfertypes.StateDownloading,
		transfertypes.StateFailed,
		transfertypes.StateAborted,
	},
	transfertypes.StateDownloading: {
		transfertypes.StateUploading,
		transfertypes.StateFailed,
		transfertypes.StateAborted,
	},
	transfertypes.StateUploading: {
		transfertypes.StateCompleted,
		transfertypes.StateFailed,
		transfertypes.StateAborted,
	},
}

// Session tracks one transfer through its lifecycle. State transitions are
// guarded: an illegal transition returns an error and leaves the state
// unchanged, and a terminal state is final.
type Session struct {
	id        string
	source    string
	key       string
	createdAt time.Time

	mu    sync.RWMutex
	state transfertypes.State
	size  int64
}

// NewSession creates a session in the Pending state with a fresh identifier.
func NewSession(source, key string) *Session {
	return &Session{
		id:        uuid.NewString(),
		source:    source,
		key:       key,
		createdAt: time.Now(),
		state:     transfertypes.StatePending,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Key returns the destination object key.
func (s *Session) Key() string {
	return s.key
}

// State returns the current lifecycle state.
func (s *Session) State() transfertypes.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Size returns the total byte size, once known.
func (s *Session) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// SetSize records the total byte size discovered from the source.
func (s *Session) SetSize(size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size = size
}

// Transition moves the session to the given state. Transitions out of a
// terminal state, or not listed in the lifecycle, are rejected.
func (s *Session) Transition(to transfertypes.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range validTransitions[s.state] {
		if allowed == to {
			s.state = to
			return nil
		}
	}

	return errors.NewError("transition", errors.ErrInvalidState).
		WithKey(s.key).
		WithMessage(string(s.state) + " -> " + string(to))
}

// Record renders the session as a storable metadata record.
func (s *Session) Record(url string) transfertypes.SessionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return transfertypes.SessionRecord{
		ID:        s.id,
		Source:    s.source,
		Key:       s.key,
		Size:      s.size,
		State:     s.state,
		URL:       url,
		CreatedAt: s.createdAt,
		UpdatedAt: time.Now(),
	}
}
