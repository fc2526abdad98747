/*
Copyright 2026 The Skaffold Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package errors

import (
	"errors"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/constants"
)

// Phase tells which step of a nixpacks run failed.
type Phase string

const (
	Detect         = Phase("Detect")
	PlanParse      = Phase("PlanParse")
	PlanGeneration = Phase("PlanGeneration")
	BuildExecution = Phase("BuildExecution")
	Unknown        = Phase("Unknown")
)

var (
	// ErrNoStartCommand is returned when a plan has no start command and one is required.
	ErrNoStartCommand = errors.New("No start command could be found")
)

// Error is an error attributed to a Phase. Its message is the message of the
// underlying cause.
type Error struct {
	phase Phase
	err   error
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Phase() Phase {
	return e.phase
}

// ExitCode maps the phase to the exit code of the CLI.
func (e *Error) ExitCode() int {
	switch e.phase {
	case Detect:
		return constants.ExitCodeDetect
	case PlanParse:
		return constants.ExitCodePlanParse
	case PlanGeneration:
		return constants.ExitCodePlanGeneration
	case BuildExecution:
		return constants.ExitCodeBuildExecution
	}
	return constants.ExitCodeGeneric
}

// NewError attributes err to a phase. Errors already attributed keep their phase.
func NewError(phase Phase, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{phase: phase, err: err}
}

func DetectionErr(err error) error {
	return NewError(Detect, err)
}

func PlanParseErr(err error) error {
	return NewError(PlanParse, err)
}

func PlanGenerationErr(err error) error {
	return NewError(PlanGeneration, err)
}

func BuildExecutionErr(err error) error {
	return NewError(BuildExecution, err)
}

// PhaseOf returns the phase err is attributed to, or Unknown.
func PhaseOf(err error) Phase {
	var e *Error
	if errors.As(err, &e) {
		return e.phase
	}
	return Unknown
}

// IsPhase returns true if err is attributed to phase.
func IsPhase(err error, phase Phase) bool {
	return err != nil && PhaseOf(err) == phase
}

// ExitCode returns the exit code for err.
func ExitCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return constants.ExitCodeGeneric
}
