package decode

import (
	"encoding/json"
	"strings"

	"github.com/template-doctor/template-doctor/internal/core"
)

// TrivyDecoder decodes docker-validation artifacts: a ZIP containing one
// Trivy JSON report.
type TrivyDecoder struct{}

// NewTrivyDecoder returns a core.Decoder for Trivy scan artifacts.
func NewTrivyDecoder() core.Decoder {
	return &TrivyDecoder{}
}

// trivyReport mirrors the subset of Trivy's JSON schema this service reads.
type trivyReport struct {
	ArtifactName string `json:"ArtifactName"`
	Results      []struct {
		Target          string `json:"Target"`
		Vulnerabilities []struct {
			VulnerabilityID string `json:"VulnerabilityID"`
			Severity        string `json:"Severity"`
			Title           string `json:"Title"`
		} `json:"Vulnerabilities"`
	} `json:"Results"`
}

// Decode unpacks the ZIP, parses the embedded Trivy JSON and maps each
// vulnerability to a finding. The scan passes when no finding is rated
// error or critical.
func (d *TrivyDecoder) Decode(data []byte) (*core.ScanReport, error) {
	content, _, err := unzipFirstMatch(data, ".json")
	if err != nil {
		return nil, err
	}

	var report trivyReport
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, core.WrapError(core.KindDecode, "artifact does not contain valid Trivy JSON", err)
	}

	out := &core.ScanReport{
		ArtifactName: report.ArtifactName,
		Summary:      map[string]int{},
		Passed:       true,
	}
	for _, result := range report.Results {
		for _, vuln := range result.Vulnerabilities {
			severity := mapTrivySeverity(vuln.Severity)
			out.Summary[severity]++
			out.Findings = append(out.Findings, core.Finding{
				ID:       vuln.VulnerabilityID,
				Severity: severity,
				Title:    vuln.Title,
				Target:   result.Target,
			})
			if severity == core.SeverityError || severity == core.SeverityCritical {
				out.Passed = false
			}
		}
	}
	return out, nil
}

func mapTrivySeverity(s string) string {
	switch strings.ToUpper(s) {
	case "CRITICAL":
		return core.SeverityCritical
	case "HIGH":
		return core.SeverityError
	case "MEDIUM":
		return core.SeverityWarning
	default:
		return core.SeverityInfo
	}
}
