// Package analytics reports completed voice sessions to the backend metrics
// endpoint. Reporting is strictly best-effort: a session must never fail or
// hang in teardown because the metrics sink is down, so every failure is
// logged and swallowed.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// completeSessionPath is the backend route receiving finished sessions.
const completeSessionPath = "/metrics/livekit-complete-session"

// reportTimeout bounds the metrics POST so session teardown stays snappy.
const reportTimeout = 5 * time.Second

// ConversationItem is one logged utterance of a finished session.
type ConversationItem struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionSummary is the payload posted for a completed session.
type SessionSummary struct {
	SessionID       string             `json:"sessionId"`
	AgentName       string             `json:"agentName"`
	Mode            string             `json:"mode"`
	StartedAt       time.Time          `json:"startedAt"`
	EndedAt         time.Time          `json:"endedAt"`
	DurationSeconds float64            `json:"durationSeconds"`
	Conversation    []ConversationItem `json:"conversation"`
}

// Reporter posts session summaries to the backend. Safe for concurrent use.
type Reporter struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// NewReporter creates a Reporter targeting the given backend base URL.
func NewReporter(baseURL string, log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{
		baseURL: baseURL,
		http:    &http.Client{Timeout: reportTimeout},
		log:     log,
	}
}

// Report posts the summary. Errors are logged, never returned.
func (r *Reporter) Report(ctx context.Context, s SessionSummary) {
	payload, err := json.Marshal(s)
	if err != nil {
		r.log.Error("encode session summary failed", "session_id", s.SessionID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+completeSessionPath, bytes.NewReader(payload))
	if err != nil {
		r.log.Error("build session report request failed", "session_id", s.SessionID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		r.log.Warn("session report failed", "session_id", s.SessionID, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.log.Warn("session report rejected",
			"session_id", s.SessionID, "status", resp.StatusCode)
		return
	}
	r.log.Debug("session report delivered",
		"session_id", s.SessionID, "items", len(s.Conversation))
}
