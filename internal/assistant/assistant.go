// Package assistant holds the per-call session state of one voice agent: the
// resolved profile, the session identity, and the conversation log that is
// reported to analytics when the session ends.
//
// An Assistant moves strictly forward through its lifecycle:
//
//	Uninitialized → Configured → Active → Ended
//
// Configure resolves the profile once; Start mints the session identity;
// OnSessionEnd is idempotent and fires the analytics report exactly once.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/novanode-ai/callbridge/internal/analytics"
	"github.com/novanode-ai/callbridge/internal/observe"
	"github.com/novanode-ai/callbridge/internal/profile"
	"github.com/novanode-ai/callbridge/internal/tools"
	"github.com/novanode-ai/callbridge/pkg/provider/llm"
)

// fallbackPrompt is used when the resolved profile carries no prompt.
const fallbackPrompt = "You are a helpful voice assistant. Respond in a friendly, conversational manner."

// brevitySuffix is appended to every system prompt. Voice responses must stay
// short or the TTS latency ruins the conversation.
const brevitySuffix = "\n\nIMPORTANT: Keep responses SHORT (≤ 2 sentences). Speak quickly and get to the point."

// State is the lifecycle phase of an [Assistant].
type State int

const (
	// StateUninitialized is the phase before Configure.
	StateUninitialized State = iota

	// StateConfigured means the profile is resolved but no call is running.
	StateConfigured

	// StateActive means a call is in progress and items are being recorded.
	StateActive

	// StateEnded is terminal. Recording becomes a no-op.
	StateEnded
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// SessionIdentity identifies one voice session. Immutable after Start.
type SessionIdentity struct {
	// SessionID is unique per session: the start timestamp plus a random
	// suffix, so IDs sort chronologically in the metrics store.
	SessionID string

	// AgentMode is the dispatch mode the session ran in.
	AgentMode string

	// StartTime is when the session went active.
	StartTime time.Time
}

// newSessionIdentity mints an identity for a session starting now.
func newSessionIdentity(mode string) SessionIdentity {
	now := time.Now()
	return SessionIdentity{
		SessionID: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
		AgentMode: mode,
		StartTime: now,
	}
}

// conversationItem is one logged utterance.
type conversationItem struct {
	role      string
	content   string
	timestamp time.Time
}

// Assistant is the session-scoped agent state. All methods are safe for
// concurrent use.
type Assistant struct {
	log      *slog.Logger
	store    *profile.Store
	reporter *analytics.Reporter
	metrics  *observe.Metrics

	profileName  string
	modeOverride string

	mu       sync.Mutex
	state    State
	profile  *profile.AgentProfile
	identity SessionIdentity
	items    []conversationItem
}

// Option customises an [Assistant].
type Option func(*Assistant)

// WithProfileName requests a specific agent profile instead of the default.
func WithProfileName(name string) Option {
	return func(a *Assistant) { a.profileName = name }
}

// WithModeOverride forces the dispatch mode for this session, taking priority
// over whatever mode the resolved profile declares. Empty keeps the profile's
// mode. This is how the MODE deployment variable pins an agent to one tool
// set regardless of which profile the store hands back.
func WithModeOverride(mode string) Option {
	return func(a *Assistant) { a.modeOverride = mode }
}

// WithMetrics overrides the metrics instance, mainly for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *Assistant) { a.metrics = m }
}

// New creates an Assistant resolving profiles through store and reporting
// finished sessions through reporter. Reporter may be nil to disable
// analytics.
func New(store *profile.Store, reporter *analytics.Reporter, log *slog.Logger, opts ...Option) *Assistant {
	a := &Assistant{
		log:      log,
		store:    store,
		reporter: reporter,
		state:    StateUninitialized,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	return a
}

// Configure resolves the agent profile. When a named profile cannot be found
// the default profile is used instead; this mirrors the config cascade, where
// a bad agent name degrades rather than fails the call.
func (a *Assistant) Configure(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateUninitialized {
		return fmt.Errorf("assistant: cannot configure in state %s", a.state)
	}

	if a.profileName != "" {
		p, err := a.store.LoadByName(ctx, a.profileName)
		switch {
		case err == nil:
			a.profile = p
		case errors.Is(err, profile.ErrNotFound):
			a.log.Warn("agent profile not found, using default", "agent", a.profileName)
			a.profile = a.store.LoadDefault(ctx)
		default:
			return fmt.Errorf("assistant: load profile %q: %w", a.profileName, err)
		}
	} else {
		a.profile = a.store.LoadDefault(ctx)
	}

	a.state = StateConfigured
	a.log.Info("assistant configured",
		"agent", a.profile.Name, "mode", a.mode())
	return nil
}

// mode resolves the effective dispatch mode: the override wins, then the
// profile's own mode, then the catalog default. Caller holds a.mu.
func (a *Assistant) mode() string {
	if a.modeOverride != "" {
		return a.modeOverride
	}
	if a.profile != nil && a.profile.Agent.Mode != "" {
		return a.profile.Agent.Mode
	}
	return profile.DefaultMode
}

// Mode returns the effective dispatch mode for this session.
func (a *Assistant) Mode() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode()
}

// Start transitions the session to active and mints its identity.
func (a *Assistant) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateConfigured {
		return fmt.Errorf("assistant: cannot start in state %s", a.state)
	}

	a.identity = newSessionIdentity(a.mode())
	a.state = StateActive
	a.metrics.ActiveSessions.Add(ctx, 1)
	a.log.Info("session started",
		"session_id", a.identity.SessionID,
		"agent", a.profile.Name,
		"mode", a.identity.AgentMode)
	return nil
}

// State returns the current lifecycle phase.
func (a *Assistant) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Profile returns the resolved agent profile. Nil before Configure. The
// returned profile is read-only by convention and safe to share.
func (a *Assistant) Profile() *profile.AgentProfile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile
}

// Identity returns the session identity. Zero value before Start.
func (a *Assistant) Identity() SessionIdentity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

// SystemPrompt renders the LLM system prompt: the profile prompt (or the
// generic fallback) plus the fixed brevity suffix.
func (a *Assistant) SystemPrompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	prompt := ""
	if a.profile != nil {
		prompt = a.profile.Prompt
	}
	if prompt == "" {
		a.log.Warn("no prompt configured, using fallback")
		prompt = fallbackPrompt
	}
	return prompt + brevitySuffix
}

// GreetingInstructions returns how the agent should open the conversation.
func (a *Assistant) GreetingInstructions() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.profile != nil && a.profile.Agent.GreetingInstructions != "" {
		return a.profile.Agent.GreetingInstructions
	}
	return profile.DefaultGreeting
}

// ToolDefinitions returns the LLM tool definitions for the session's mode.
func (a *Assistant) ToolDefinitions() []llm.ToolDefinition {
	a.mu.Lock()
	mode := a.mode()
	a.mu.Unlock()

	specs := tools.ForMode(mode)
	defs := make([]llm.ToolDefinition, 0, len(specs))
	for _, s := range specs {
		defs = append(defs, s.Definition())
	}
	return defs
}

// RecordConversationItem appends an utterance to the session log in arrival
// order. After the session has ended recording is a warned no-op.
func (a *Assistant) RecordConversationItem(role, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateEnded {
		a.log.Warn("conversation item dropped, session already ended",
			"session_id", a.identity.SessionID, "role", role)
		return
	}

	a.items = append(a.items, conversationItem{
		role:      role,
		content:   content,
		timestamp: time.Now(),
	})
	if role == "assistant" && a.profile != nil {
		a.metrics.RecordAgentUtterance(context.Background(), a.profile.Name)
	}
}

// ConversationLength returns the number of recorded items.
func (a *Assistant) ConversationLength() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// OnSessionEnd finishes the session and reports it to analytics. Safe to call
// multiple times; only the first call has any effect.
func (a *Assistant) OnSessionEnd(ctx context.Context) {
	a.mu.Lock()
	if a.state == StateEnded {
		a.mu.Unlock()
		return
	}
	wasActive := a.state == StateActive
	a.state = StateEnded

	identity := a.identity
	items := make([]analytics.ConversationItem, 0, len(a.items))
	for _, it := range a.items {
		items = append(items, analytics.ConversationItem{
			Role:      it.role,
			Content:   it.content,
			Timestamp: it.timestamp,
		})
	}
	var agentName string
	if a.profile != nil {
		agentName = a.profile.Name
	}
	mode := a.mode()
	a.mu.Unlock()

	if !wasActive {
		a.log.Debug("session ended before start, skipping analytics")
		return
	}

	a.metrics.ActiveSessions.Add(ctx, -1)

	ended := time.Now()
	a.log.Info("session ended",
		"session_id", identity.SessionID,
		"duration", ended.Sub(identity.StartTime),
		"items", len(items))

	if a.reporter == nil {
		return
	}
	a.reporter.Report(ctx, analytics.SessionSummary{
		SessionID:       identity.SessionID,
		AgentName:       agentName,
		Mode:            mode,
		StartedAt:       identity.StartTime,
		EndedAt:         ended,
		DurationSeconds: ended.Sub(identity.StartTime).Seconds(),
		Conversation:    items,
	})
}
