// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkflowTarget identifies a remote workflow definition: the repository that
// hosts it, the workflow file (or numeric ID) inside .github/workflows, and the
// branch the dispatch runs against. Constructed from configuration, never persisted.
type WorkflowTarget struct {
	Owner        string
	Repo         string
	WorkflowFile string
	Branch       string
}

// OwnerRepo returns the "owner/repo" form used in GitHub API paths and logs.
func (t WorkflowTarget) OwnerRepo() string {
	return t.Owner + "/" + t.Repo
}

func (t WorkflowTarget) String() string {
	return fmt.Sprintf("%s/%s@%s (%s)", t.Owner, t.Repo, t.Branch, t.WorkflowFile)
}

// DispatchRequest describes one workflow_dispatch trigger. The input named by
// CorrelationKey must carry a value unique to this dispatch; the remote workflow
// embeds it in the run's display title or head-commit message, which is the only
// way the run can later be matched back to this request.
type DispatchRequest struct {
	Target         WorkflowTarget
	Inputs         map[string]string
	CorrelationKey string
}

// CorrelationValue returns the value of the correlation input, or "" if the
// caller failed to provide one.
func (r DispatchRequest) CorrelationValue() string {
	return r.Inputs[r.CorrelationKey]
}

// NewCorrelationID generates a fresh correlation token for a dispatch.
// Full UUIDs are used so that no token can be a proper substring of another.
func NewCorrelationID() string {
	return uuid.NewString()
}

// RunHandle is the transient token produced once a dispatched run has been
// located. It is owned by the caller for the lifetime of the poll/artifact
// sequence and is never persisted.
type RunHandle struct {
	RunID            int64
	Target           WorkflowTarget
	CorrelationValue string
	HTMLURL          string
	// Attempts records how many run-listing rounds it took to find the run.
	Attempts int
}

// RunState is the coarse lifecycle state of a workflow run. Transitions are
// monotonic: queued -> in_progress -> completed, with no rollback.
type RunState string

const (
	RunQueued     RunState = "queued"
	RunInProgress RunState = "in_progress"
	RunCompleted  RunState = "completed"
)

// Conclusion is the terminal sub-state of a completed run. It is empty until
// the run reaches RunCompleted.
type Conclusion string

const (
	ConclusionSuccess   Conclusion = "success"
	ConclusionFailure   Conclusion = "failure"
	ConclusionCancelled Conclusion = "cancelled"
	ConclusionTimedOut  Conclusion = "timed_out"
)

// RunStatus is a snapshot of a run's state as reported by the remote API.
type RunStatus struct {
	RunID      int64
	State      RunState
	Conclusion Conclusion
	HTMLURL    string
	UpdatedAt  time.Time
}

// Terminal reports whether the run has reached a state from which no further
// transition occurs.
func (s RunStatus) Terminal() bool {
	return s.State == RunCompleted
}

// Succeeded reports whether the run completed with a success conclusion.
func (s RunStatus) Succeeded() bool {
	return s.Terminal() && s.Conclusion == ConclusionSuccess
}

// Artifact is a named, downloadable file bundle produced by a completed run.
// Immutable once listed.
type Artifact struct {
	ID                 int64
	Name               string
	ArchiveDownloadURL string
	SizeInBytes        int64
	Expired            bool
}
