package probe

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/platewire/sizzle/internal/suite"
)

// ExpectError is returned when a step's expectation does not hold.
// It renders in expected/actual terms so a failure line is enough to
// diagnose without re-running.
type ExpectError struct {
	Kind     string // "marker", "status" or "json"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ExpectError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s expectation failed\n", e.Kind)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// evaluate judges a response against a step's expectation. Every declared
// criterion must hold. A step with a zero expectation requires the default
// success marker in the body.
//
// Matching happens on whatever text came back. A transport failure shows
// up here as status 0 with an empty body and fails the marker test like
// any other non-conforming response; the two cases are intentionally not
// distinguished.
func evaluate(step suite.Step, status int, body []byte) error {
	expect := step.Expect

	marker := expect.Marker
	if expect.IsZero() {
		marker = suite.DefaultMarker
	}

	if expect.Status != 0 && status != expect.Status {
		return &ExpectError{
			Kind:     "status",
			Expected: strconv.Itoa(expect.Status),
			Actual:   describeStatus(status),
		}
	}

	if marker != "" && !strings.Contains(string(body), marker) {
		return &ExpectError{
			Kind:     "marker",
			Expected: fmt.Sprintf("body containing %s", marker),
			Actual:   describeBody(body),
		}
	}

	if len(expect.JSON) > 0 {
		if err := evaluateJSON(expect.JSON, body); err != nil {
			return err
		}
	}

	return nil
}

// evaluateJSON checks dotted-path field assertions against the parsed body.
// Subset semantics: only the listed paths are checked.
func evaluateJSON(fields map[string]any, body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return &ExpectError{
			Kind:     "json",
			Expected: "a JSON response body",
			Actual:   describeBody(body),
		}
	}

	for path, want := range fields {
		got, err := lookupPath(doc, path)
		if err != nil {
			return &ExpectError{
				Kind:     "json",
				Expected: fmt.Sprintf("field %q = %v", path, want),
				Actual:   err.Error(),
			}
		}
		if !valueEqual(want, got) {
			return &ExpectError{
				Kind:     "json",
				Expected: fmt.Sprintf("field %q = %v", path, want),
				Actual:   fmt.Sprintf("%v", got),
			}
		}
	}

	return nil
}

// lookupPath resolves a dotted path like "items.0.name" against a parsed
// JSON document. Numeric segments index arrays, others key into objects.
func lookupPath(doc any, path string) (any, error) {
	cur := doc
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			val, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("field %q not present", seg)
			}
			cur = val
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("segment %q is not an array index", seg)
			}
			if idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("index %d out of range (len %d)", idx, len(node))
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("segment %q: cannot descend into %T", seg, cur)
		}
	}
	return cur, nil
}

// valueEqual compares an expected value (YAML-parsed) with an actual value
// (JSON-parsed). Numbers compare by value across int/float representations
// since YAML yields int for whole numbers and JSON always yields float64.
func valueEqual(want, got any) bool {
	if wf, ok := toFloat(want); ok {
		gf, ok := toFloat(got)
		return ok && wf == gf
	}
	return reflect.DeepEqual(want, got)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// describeStatus renders a status code for failure messages.
func describeStatus(status int) string {
	if status == 0 {
		return "no response received"
	}
	return strconv.Itoa(status)
}

// describeBody renders a (possibly empty, possibly large) body for failure
// messages. Bodies are truncated so a single bad response cannot flood the
// report.
func describeBody(body []byte) string {
	const maxShown = 512
	if len(body) == 0 {
		return "empty response body"
	}
	text := string(body)
	if len(text) > maxShown {
		text = text[:maxShown] + "... (truncated)"
	}
	return text
}
