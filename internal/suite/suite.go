package suite

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMarker is the substring a step's response body must contain when
// the step declares no explicit expectation.
const DefaultMarker = `"status": "success"`

// Markers for the two health-style endpoints, which report a different
// status vocabulary than the data operations.
const (
	HealthyMarker   = `"status": "healthy"`
	DBHealthyMarker = `"database_status": "healthy"`
)

// ValidMethods lists the HTTP methods a step may use.
var ValidMethods = []string{"GET", "POST", "PUT", "DELETE"}

// Suite defines a smoke-test suite: an ordered list of HTTP operations to
// issue against one service, each with an expectation on the response.
//
// Suites are the declarative replacement for function-per-endpoint test
// scripts: a single generic runner (internal/probe) interprets the steps
// in order.
type Suite struct {
	// Name uniquely identifies this suite.
	Name string `yaml:"name"`

	// Description explains what this suite exercises.
	Description string `yaml:"description"`

	// BaseURL is the service root every step path is resolved against,
	// including any API prefix (e.g. "http://localhost:5000/api").
	// The CLI may override it at run time.
	BaseURL string `yaml:"base_url,omitempty"`

	// Vars are substituted into step paths and string body values using
	// ${name} syntax. Referencing an undefined var is a load error.
	Vars map[string]string `yaml:"vars,omitempty"`

	// Steps run strictly in order. In fail-fast mode the first failing
	// step terminates the run.
	Steps []Step `yaml:"steps"`
}

// Step is a single operation descriptor: one request, one expectation.
type Step struct {
	// Name identifies the step in reports and diagnostics.
	Name string `yaml:"name"`

	// Method is the HTTP method (GET, POST, PUT or DELETE).
	Method string `yaml:"method"`

	// Path is appended to the suite base URL. May contain ${var}
	// references and a query string.
	Path string `yaml:"path"`

	// Body, if present, is serialized as the JSON request body.
	// Mutating calls build their payloads here instead of by string
	// interpolation, so quotes in values need no escaping.
	Body map[string]any `yaml:"body,omitempty"`

	// Expect declares how the response is judged. A zero Expect means
	// "body contains DefaultMarker".
	Expect Expect `yaml:"expect,omitempty"`

	// Echo marks read-style steps whose successful response body is
	// pretty-printed when the runner's echo mode is on.
	Echo bool `yaml:"echo,omitempty"`
}

// Expect declares the success criteria for a step. Fields combine: every
// declared criterion must hold.
type Expect struct {
	// Marker is a literal substring the raw response body must contain.
	// Matching is performed on whatever text came back, so a transport
	// failure (empty body) fails the marker test like any other
	// non-conforming response.
	Marker string `yaml:"marker,omitempty"`

	// Status, if non-zero, is the required HTTP status code.
	Status int `yaml:"status,omitempty"`

	// JSON maps dotted field paths (e.g. "items.0.name") to required
	// values in the parsed response body. Subset match: fields not
	// listed are ignored.
	JSON map[string]any `yaml:"json,omitempty"`
}

// IsZero reports whether no expectation was declared.
func (e Expect) IsZero() bool {
	return e.Marker == "" && e.Status == 0 && len(e.JSON) == 0
}

// Load reads and parses a suite YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or fails structural validation.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	return Parse(data)
}

// Parse parses suite YAML bytes with strict field validation and applies
// ${var} interpolation to step paths and string body values.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateSuite(&s); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}

	if err := s.expandVars(); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}

	return &s, nil
}

// expandVars substitutes ${name} references in step paths and string body
// values. Undefined references are errors rather than silent empties.
func (s *Suite) expandVars() error {
	for i := range s.Steps {
		step := &s.Steps[i]

		expanded, err := expand(step.Path, s.Vars)
		if err != nil {
			return fmt.Errorf("steps[%d] (%s): path: %w", i, step.Name, err)
		}
		step.Path = expanded

		for key, val := range step.Body {
			sv, ok := val.(string)
			if !ok {
				continue
			}
			expanded, err := expand(sv, s.Vars)
			if err != nil {
				return fmt.Errorf("steps[%d] (%s): body[%s]: %w", i, step.Name, key, err)
			}
			step.Body[key] = expanded
		}
	}
	return nil
}

// expand performs ${name} substitution against vars.
func expand(in string, vars map[string]string) (string, error) {
	var missing []string
	out := os.Expand(in, func(name string) string {
		if val, ok := vars[name]; ok {
			return val
		}
		missing = append(missing, name)
		return ""
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("undefined var(s): %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// validateSuite checks that required fields are present and valid.
func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Steps))
	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
		if seen[step.Name] {
			return fmt.Errorf("steps[%d]: duplicate step name %q", i, step.Name)
		}
		seen[step.Name] = true
	}

	return nil
}

// validateStep validates a single step descriptor.
func validateStep(index int, step *Step) error {
	if step.Name == "" {
		return fmt.Errorf("steps[%d]: name is required", index)
	}

	if !isValidMethod(step.Method) {
		return fmt.Errorf("steps[%d] (%s): invalid method %q: must be one of %v",
			index, step.Name, step.Method, ValidMethods)
	}

	if !strings.HasPrefix(step.Path, "/") {
		return fmt.Errorf("steps[%d] (%s): path must start with /", index, step.Name)
	}

	if len(step.Body) > 0 && step.Method == "GET" {
		return fmt.Errorf("steps[%d] (%s): GET steps cannot carry a body", index, step.Name)
	}

	if step.Expect.Status != 0 && (step.Expect.Status < 100 || step.Expect.Status > 599) {
		return fmt.Errorf("steps[%d] (%s): invalid expected status %d",
			index, step.Name, step.Expect.Status)
	}

	return nil
}

func isValidMethod(method string) bool {
	for _, m := range ValidMethods {
		if m == method {
			return true
		}
	}
	return false
}
