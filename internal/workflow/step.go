// Package workflow models the interview prep flow as an explicit state
// machine: input, file-select, analyzing and results.
package workflow

import (
	"errors"
	"fmt"
)

type Step string

const (
	StepInput      Step = "input"
	StepFileSelect Step = "file-select"
	StepAnalyzing  Step = "analyzing"
	StepResults    Step = "results"
)

type Event string

const (
	EventScanned        Event = "scanned"
	EventScanFailed     Event = "scan-failed"
	EventAnalyze        Event = "analyze"
	EventGenerated      Event = "generated"
	EventGenerateFailed Event = "generate-failed"
	EventBack           Event = "back"
)

var ErrInvalidTransition = errors.New("workflow: invalid transition")

type transition struct {
	from Step
	on   Event
}

var transitions = map[transition]Step{
	{StepInput, EventScanned}:            StepFileSelect,
	{StepInput, EventScanFailed}:         StepInput,
	{StepFileSelect, EventAnalyze}:       StepAnalyzing,
	{StepFileSelect, EventBack}:          StepInput,
	{StepAnalyzing, EventGenerated}:      StepResults,
	{StepAnalyzing, EventGenerateFailed}: StepFileSelect,
	{StepResults, EventBack}:             StepFileSelect,
	{StepResults, EventAnalyze}:          StepAnalyzing,
}

// Next returns the step reached from s on e. Failed generation always lands
// on file-select so the scanned tree and selection survive.
func Next(s Step, e Event) (Step, error) {
	to, ok := transitions[transition{s, e}]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
	}
	return to, nil
}
