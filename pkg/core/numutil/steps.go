package numutil

import (
	"fmt"

	"smb_valuation/pkg/models"
)

// StepTrail is the per-run audit accumulator. One trail is created at the
// start of each top-level run and shared by pointer across every calculator
// invoked in that run; the sequence counter is the run's ordering guarantee.
// A trail must not be shared across concurrently-in-flight runs.
type StepTrail struct {
	seq      int
	steps    []models.CalculationStep
	warnings []string
}

// NewStepTrail returns an empty trail with the sequence counter at zero.
func NewStepTrail() *StepTrail {
	return &StepTrail{}
}

// Add appends one calculation step and returns it for note attachment. The
// returned pointer is only valid until the next Add on the same trail, which
// may reallocate the step slice; attach notes before recording further steps.
func (t *StepTrail) Add(category, description, formula string, inputs map[string]float64, result float64) *models.CalculationStep {
	t.seq++
	t.steps = append(t.steps, models.CalculationStep{
		Sequence:    t.seq,
		Category:    category,
		Description: description,
		Formula:     formula,
		Inputs:      inputs,
		Result:      result,
	})
	return &t.steps[len(t.steps)-1]
}

// Warn appends one human-readable warning to the run's warning list.
func (t *StepTrail) Warn(msg string) {
	t.warnings = append(t.warnings, msg)
}

// Warnf appends a formatted warning.
func (t *StepTrail) Warnf(format string, args ...interface{}) {
	t.Warn(fmt.Sprintf(format, args...))
}

// WarnStep appends a warning and records it as the note of the given step,
// associating the warning with the step that produced it.
func (t *StepTrail) WarnStep(step *models.CalculationStep, msg string) {
	t.Warn(msg)
	if step != nil {
		if step.Note != "" {
			step.Note += "; "
		}
		step.Note += msg
	}
}

// Steps returns the recorded steps in sequence order.
func (t *StepTrail) Steps() []models.CalculationStep {
	return t.steps
}

// Warnings returns the accumulated warnings in insertion order.
func (t *StepTrail) Warnings() []string {
	return t.warnings
}

// SinceIndex returns a copy of the steps recorded at or after the given
// index; calculators use it to attach their own slice of the shared trail to
// their result.
func (t *StepTrail) SinceIndex(idx int) []models.CalculationStep {
	if idx < 0 || idx > len(t.steps) {
		return nil
	}
	out := make([]models.CalculationStep, len(t.steps)-idx)
	copy(out, t.steps[idx:])
	return out
}

// WarningsSince mirrors SinceIndex for the warning list.
func (t *StepTrail) WarningsSince(idx int) []string {
	if idx < 0 || idx > len(t.warnings) {
		return nil
	}
	out := make([]string, len(t.warnings)-idx)
	copy(out, t.warnings[idx:])
	return out
}

// Len returns the number of recorded steps.
func (t *StepTrail) Len() int { return len(t.steps) }

// WarningCount returns the number of recorded warnings.
func (t *StepTrail) WarningCount() int { return len(t.warnings) }
