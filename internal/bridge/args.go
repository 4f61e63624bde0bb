package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
)

// callArgs is the decoded JSON argument object of one function call.
type callArgs map[string]any

// missingArgumentError marks a required argument the model failed to supply.
type missingArgumentError struct {
	name string
}

func (e *missingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.name)
}

// parseArgs decodes the raw JSON argument string. An empty string is treated
// as an empty object, which some models emit for zero-argument calls.
func parseArgs(raw string) (callArgs, error) {
	if strings.TrimSpace(raw) == "" {
		return callArgs{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// stringArg returns a required string argument.
func (a callArgs) stringArg(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", &missingArgumentError{name: name}
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", name)
	}
	return s, nil
}

// optString returns an optional string argument, or "" when absent.
func (a callArgs) optString(name string) string {
	s, _ := a[name].(string)
	return s
}

// intArg returns a required integer argument. JSON numbers arrive as
// float64, so the value is truncated.
func (a callArgs) intArg(name string) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return 0, &missingArgumentError{name: name}
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("argument %q must be a number", name)
	}
	return int(f), nil
}

// optInt returns an optional integer argument.
func (a callArgs) optInt(name string) (int, bool) {
	f, ok := a[name].(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// boolArg returns a required boolean argument.
func (a callArgs) boolArg(name string) (bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return false, &missingArgumentError{name: name}
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument %q must be a boolean", name)
	}
	return b, nil
}

// optBool returns an optional boolean argument.
func (a callArgs) optBool(name string) (bool, bool) {
	b, ok := a[name].(bool)
	return b, ok
}

// stringsArg returns an optional array-of-strings argument. Non-string
// elements are skipped.
func (a callArgs) stringsArg(name string) []string {
	raw, ok := a[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// decode re-marshals a structured argument into out. Used for nested object
// arrays such as order line items.
func (a callArgs) decode(name string, out any) error {
	v, ok := a[name]
	if !ok || v == nil {
		return &missingArgumentError{name: name}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("argument %q: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("argument %q has the wrong shape: %w", name, err)
	}
	return nil
}
