package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Compile-time interface check.
var _ Source = (*FileSource)(nil)

// FileSource loads agent profiles from a local JSON config file. The file may
// contain either a single profile object or an array of profiles; in the
// array form, the first entry is the default.
//
// The file is re-read on every call so edits take effect without a restart.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource reading the given path.
func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, errors.New("profile: file path must not be empty")
	}
	return &FileSource{path: path}, nil
}

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

// Default implements Source.
func (s *FileSource) Default(_ context.Context) (*AgentProfile, error) {
	profiles, err := s.load()
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// ByName implements Source.
func (s *FileSource) ByName(_ context.Context, name string) (*AgentProfile, error) {
	profiles, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i], nil
		}
	}
	return nil, nil
}

// Names implements Source.
func (s *FileSource) Names(_ context.Context) ([]string, error) {
	profiles, err := s.load()
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

// load reads and parses the config file, accepting both the object and the
// array form.
func (s *FileSource) load() ([]AgentProfile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("profile: read %s: %w", s.path, err)
	}

	var profiles []AgentProfile
	if err := json.Unmarshal(data, &profiles); err == nil {
		return profiles, nil
	}

	var single AgentProfile
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("profile: parse %s: %w", s.path, err)
	}
	return []AgentProfile{single}, nil
}
