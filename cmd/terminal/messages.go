package main

import (
	"github.com/template-doctor/template-doctor/internal/core"
	"github.com/template-doctor/template-doctor/internal/orchestrator"
)

// Indicates that configuration and the GitHub client have been initialized.
type servicesReadyMsg struct {
	deps *services
	err  error
}

// Reports a pipeline stage transition of the running validation.
type stageMsg struct {
	stage  orchestrator.Stage
	handle core.RunHandle
}

// Indicates that the validation has finished, successfully or not.
type validationDoneMsg struct {
	compliant bool
	runURL    string
	summary   []string
	err       error
}

// A generic error message for reporting failures from commands.
type errorMsg struct{ err error }

func (e errorMsg) Error() string {
	return e.err.Error()
}
