package core

import "time"

// Decoder turns the raw bytes of a downloaded artifact into a ScanReport.
// Each workflow type (docker/Trivy, azd report) supplies its own implementation;
// the orchestration pipeline itself never inspects artifact content.
type Decoder interface {
	Decode(data []byte) (*ScanReport, error)
}

// Severity levels for findings and issues, ordered from least to most severe.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Finding is a single problem reported by a scan artifact.
type Finding struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Target   string `json:"target,omitempty"`
}

// ScanReport is the decoded content of one artifact.
type ScanReport struct {
	ArtifactName string         `json:"artifactName,omitempty"`
	Findings     []Finding      `json:"findings"`
	Summary      map[string]int `json:"summary"`
	Passed       bool           `json:"passed"`
	// Markdown carries the source report for decoders whose artifacts are
	// human-readable documents (azd validation).
	Markdown string `json:"markdown,omitempty"`
}

// Issue is a compliance problem surfaced to the caller of a validation,
// e.g. an OSSF score below the requested minimum.
type Issue struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Validation is the persisted record of one validation request, successful or not.
type Validation struct {
	ID          int64     `db:"id" json:"id"`
	TemplateURL string    `db:"template_url" json:"templateUrl"`
	Type        string    `db:"type" json:"type"`
	RunID       int64     `db:"run_id" json:"runId"`
	Conclusion  string    `db:"conclusion" json:"conclusion"`
	Compliant   bool      `db:"compliant" json:"compliant"`
	Score       *float64  `db:"score" json:"score,omitempty"`
	Report      string    `db:"report" json:"report,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Validation type discriminants stored alongside records and used in API paths.
const (
	ValidationDocker = "docker"
	ValidationOSSF   = "ossf"
	ValidationAzd    = "azd"
)
