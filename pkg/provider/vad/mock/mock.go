// Package mock provides test doubles for the vad package interfaces.
//
// Use Engine to verify that sessions are created with the expected Config,
// and Session to feed controlled detection results.
package mock

import (
	"sync"

	"github.com/novanode-ai/callbridge/pkg/provider/vad"
)

// Engine is a mock implementation of vad.Engine.
type Engine struct {
	mu sync.Mutex

	// Session is returned by NewSession. If nil, a fresh empty Session is
	// created per call.
	Session *Session

	// NewSessionErr, if non-nil, is returned from NewSession.
	NewSessionErr error

	// NewSessionCalls records the config of every NewSession invocation.
	NewSessionCalls []vad.Config
}

// NewSession records the call and returns the configured session.
func (e *Engine) NewSession(cfg vad.Config) (vad.SessionHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.NewSessionCalls = append(e.NewSessionCalls, cfg)
	if e.NewSessionErr != nil {
		return nil, e.NewSessionErr
	}
	if e.Session != nil {
		return e.Session, nil
	}
	return &Session{}, nil
}

// Session is a mock implementation of vad.SessionHandle.
type Session struct {
	mu sync.Mutex

	// Segments is returned by every Process call.
	Segments []vad.Segment

	// ProcessErr, if non-nil, is returned from Process.
	ProcessErr error

	// ProcessCalls counts Process invocations.
	ProcessCalls int

	// ResetCalls counts Reset invocations.
	ResetCalls int

	// Closed reports whether Close has been called.
	Closed bool
}

// Process records the call and returns Segments, ProcessErr.
func (s *Session) Process(_ []float32) ([]vad.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProcessCalls++
	return s.Segments, s.ProcessErr
}

// Reset records the call.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ResetCalls++
	return nil
}

// Close marks the session closed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// Compile-time interface checks.
var (
	_ vad.Engine        = (*Engine)(nil)
	_ vad.SessionHandle = (*Session)(nil)
)
