package calcx

import "github.com/google/uuid"

// Session holds the extended state that outlives one iteration of the
// calculator: the previous result ("Ans") and the continuation flag.
// A Session is owned by a single loop and is not safe for concurrent use.
type Session struct {
	id       string
	previous float64
	cont     bool
}

// NewSession creates a session with a zero previous result that continues by default.
func NewSession() *Session {
	return &Session{
		id:   uuid.NewString(),
		cont: true,
	}
}

// ID returns the session identifier used in log records.
func (s *Session) ID() string {
	return s.id
}

// Current returns the previous result and whether the loop should continue.
func (s *Session) Current() (float64, bool) {
	return s.previous, s.cont
}

// RecordSuccess stores the result of a completed real-valued computation.
func (s *Session) RecordSuccess(result float64) {
	s.previous = result
}

// RequestExit stops the loop after the current iteration.
func (s *Session) RequestExit() {
	s.cont = false
}

// SetContinue sets the continuation flag from the user's answer.
func (s *Session) SetContinue(flag bool) {
	s.cont = flag
}
