package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Outcomes []Outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nOutcomes:\n")
	for i, o := range e.Outcomes {
		status := "ok"
		if o.Error != "" {
			status = "error: " + o.Error
		}
		fmt.Fprintf(&buf, "  [%d] %s/%s %s\n", i+1, o.Record, o.Operator, status)
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertExpands:
		return assertExpands(result, a)
	case AssertRejects:
		return assertRejects(result, a)
	case AssertCount:
		return assertCount(result, a)
	case AssertContains:
		return assertContains(result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func lookup(result *Result, a Assertion) (Outcome, error) {
	o, ok := result.Find(a.Record, a.Operator)
	if !ok {
		return Outcome{}, &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("an outcome for %s/%s", a.Record, a.Operator),
			Actual:   "no such request",
			Outcomes: result.Outcomes,
		}
	}
	return o, nil
}

func assertExpands(result *Result, a Assertion) error {
	o, err := lookup(result, a)
	if err != nil {
		return err
	}
	if o.Error != "" {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s/%s to expand", a.Record, a.Operator),
			Actual:   o.Error,
			Outcomes: result.Outcomes,
		}
	}
	return nil
}

func assertRejects(result *Result, a Assertion) error {
	o, err := lookup(result, a)
	if err != nil {
		return err
	}
	if o.Error == "" {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s/%s to be rejected", a.Record, a.Operator),
			Actual:   "expanded",
			Outcomes: result.Outcomes,
		}
	}
	if a.Reason != "" && o.Reason != a.Reason {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("reason %q", a.Reason),
			Actual:   fmt.Sprintf("reason %q", o.Reason),
			Outcomes: result.Outcomes,
		}
	}
	return nil
}

func assertCount(result *Result, a Assertion) error {
	if n := result.Expanded(); n != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d implementation(s)", a.Count),
			Actual:   fmt.Sprintf("%d implementation(s)", n),
			Outcomes: result.Outcomes,
		}
	}
	return nil
}

func assertContains(result *Result, a Assertion) error {
	o, err := lookup(result, a)
	if err != nil {
		return err
	}
	for _, text := range a.Text {
		if !strings.Contains(o.Rendered, text) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("rendered %s/%s to contain %q", a.Record, a.Operator, text),
				Actual:   o.Rendered,
				Outcomes: result.Outcomes,
			}
		}
	}
	return nil
}
