package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// defaultRemoteTimeout bounds every config-service round trip.
const defaultRemoteTimeout = 10 * time.Second

// Compile-time interface check.
var _ Source = (*RemoteSource)(nil)

// RemoteSource loads agent profiles from the config service REST API:
// GET /agents lists all profiles (first entry is the default) and
// GET /agents/name/{name} fetches one by name.
type RemoteSource struct {
	baseURL string
	client  *http.Client
}

// RemoteOption is a functional option for RemoteSource.
type RemoteOption func(*RemoteSource)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(s *RemoteSource) {
		s.client = c
	}
}

// NewRemoteSource creates a RemoteSource for the given config service base
// URL (e.g. "http://localhost:3001").
func NewRemoteSource(baseURL string, opts ...RemoteOption) (*RemoteSource, error) {
	if baseURL == "" {
		return nil, errors.New("profile: remote baseURL must not be empty")
	}
	s := &RemoteSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultRemoteTimeout},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Name implements Source.
func (s *RemoteSource) Name() string { return "remote" }

// Default implements Source. The config service orders /agents so that the
// first entry is the default profile.
func (s *RemoteSource) Default(ctx context.Context) (*AgentProfile, error) {
	profiles, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// ByName implements Source. A 404 from the config service means the agent is
// unknown and yields (nil, nil).
func (s *RemoteSource) ByName(ctx context.Context, name string) (*AgentProfile, error) {
	endpoint := s.baseURL + "/agents/name/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("profile: remote request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile: remote fetch %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile: remote fetch %q: unexpected status %d", name, resp.StatusCode)
	}

	var p AgentProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("profile: remote decode %q: %w", name, err)
	}
	return &p, nil
}

// Names implements Source.
func (s *RemoteSource) Names(ctx context.Context) ([]string, error) {
	profiles, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

// fetchAll retrieves every profile from GET /agents.
func (s *RemoteSource) fetchAll(ctx context.Context) ([]AgentProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/agents", nil)
	if err != nil {
		return nil, fmt.Errorf("profile: remote request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile: remote list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile: remote list: unexpected status %d", resp.StatusCode)
	}

	var profiles []AgentProfile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("profile: remote list decode: %w", err)
	}
	return profiles, nil
}
