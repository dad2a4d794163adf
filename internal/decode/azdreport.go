package decode

import (
	"strings"

	"github.com/template-doctor/template-doctor/internal/core"
)

// AzdReportDecoder decodes azd-validation artifacts: a ZIP containing a
// markdown report of per-check results.
type AzdReportDecoder struct{}

// NewAzdReportDecoder returns a core.Decoder for azd validation reports.
func NewAzdReportDecoder() core.Decoder {
	return &AzdReportDecoder{}
}

// Decode extracts the markdown report and turns each checklist line into a
// finding. Failed checks ("- [ ]" or a line marked with a cross) are errors;
// warning-marked lines are warnings. The validation passes when no check failed.
func (d *AzdReportDecoder) Decode(data []byte) (*core.ScanReport, error) {
	content, name, err := unzipFirstMatch(data, ".md")
	if err != nil {
		return nil, err
	}

	report := &core.ScanReport{
		ArtifactName: name,
		Summary:      map[string]int{},
		Passed:       true,
		Markdown:     string(content),
	}

	section := ""
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			section = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		case strings.HasPrefix(trimmed, "- [ ]"), strings.Contains(trimmed, "❌"):
			report.Summary[core.SeverityError]++
			report.Passed = false
			report.Findings = append(report.Findings, core.Finding{
				Severity: core.SeverityError,
				Title:    checkTitle(trimmed),
				Target:   section,
			})
		case strings.Contains(trimmed, "⚠️"):
			report.Summary[core.SeverityWarning]++
			report.Findings = append(report.Findings, core.Finding{
				Severity: core.SeverityWarning,
				Title:    checkTitle(trimmed),
				Target:   section,
			})
		case strings.HasPrefix(trimmed, "- [x]"), strings.HasPrefix(trimmed, "- [X]"):
			report.Summary[core.SeverityInfo]++
		}
	}
	return report, nil
}

func checkTitle(line string) string {
	s := strings.TrimSpace(line)
	for _, marker := range []string{"- [ ]", "- [x]", "- [X]", "-", "❌", "⚠️"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, marker))
	}
	return s
}
