// Package mock provides test doubles for the stt package interfaces.
//
// Use Provider to verify that callers start sessions with the expected
// configuration, and Session to feed controlled transcripts.
package mock

import (
	"context"
	"sync"

	"github.com/novanode-ai/callbridge/pkg/provider/stt"
)

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Session is returned by StartStream. If nil, a fresh empty Session is
	// created per call.
	Session *Session

	// StartErr, if non-nil, is returned from StartStream.
	StartErr error

	// StartCalls records the config of every StartStream invocation.
	StartCalls []stt.StreamConfig
}

// StartStream records the call and returns the configured session.
func (p *Provider) StartStream(_ context.Context, cfg stt.StreamConfig) (stt.SessionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartCalls = append(p.StartCalls, cfg)
	if p.StartErr != nil {
		return nil, p.StartErr
	}
	if p.Session != nil {
		return p.Session, nil
	}
	return NewSession(nil, nil), nil
}

// Session is a mock implementation of stt.SessionHandle. The transcripts
// passed to NewSession are emitted when Close is called.
type Session struct {
	mu sync.Mutex

	partialQueue []stt.Transcript
	finalQueue   []stt.Transcript
	partials     chan stt.Transcript
	finals       chan stt.Transcript
	closed       bool

	// SendErr, if non-nil, is returned from SendAudio.
	SendErr error

	// Audio records every chunk passed to SendAudio.
	Audio [][]byte
}

// NewSession creates a Session that emits the given transcripts on Close.
func NewSession(partials, finals []stt.Transcript) *Session {
	return &Session{
		partialQueue: partials,
		finalQueue:   finals,
		partials:     make(chan stt.Transcript, len(partials)+1),
		finals:       make(chan stt.Transcript, len(finals)+1),
	}
}

// SendAudio records the chunk.
func (s *Session) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendErr != nil {
		return s.SendErr
	}
	s.Audio = append(s.Audio, chunk)
	return nil
}

// Partials returns the interim transcript channel.
func (s *Session) Partials() <-chan stt.Transcript { return s.partials }

// Finals returns the final transcript channel.
func (s *Session) Finals() <-chan stt.Transcript { return s.finals }

// Close emits the queued transcripts and closes both channels.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, t := range s.partialQueue {
		s.partials <- t
	}
	for _, t := range s.finalQueue {
		s.finals <- t
	}
	close(s.partials)
	close(s.finals)
	return nil
}

// Compile-time interface checks.
var (
	_ stt.Provider      = (*Provider)(nil)
	_ stt.SessionHandle = (*Session)(nil)
)
