package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/template-doctor/template-doctor/internal/core"
)

const azdReportMD = `# azd Validation Report

## Repository Structure
- [x] azure.yaml present
- [x] infra directory present
- [ ] README deployment section missing

## Provisioning
- [x] azd provision succeeded
- ⚠️ deployment took longer than 10 minutes
`

func TestAzdReportDecoder(t *testing.T) {
	data := zipWithFile(t, "report.md", []byte(azdReportMD))

	report, err := NewAzdReportDecoder().Decode(data)
	require.NoError(t, err)

	assert.False(t, report.Passed)
	assert.Equal(t, azdReportMD, report.Markdown)
	assert.Equal(t, 1, report.Summary[core.SeverityError])
	assert.Equal(t, 1, report.Summary[core.SeverityWarning])
	assert.Equal(t, 3, report.Summary[core.SeverityInfo])

	require.Len(t, report.Findings, 2)
	assert.Equal(t, "README deployment section missing", report.Findings[0].Title)
	assert.Equal(t, "Repository Structure", report.Findings[0].Target)
	assert.Equal(t, core.SeverityWarning, report.Findings[1].Severity)
	assert.Equal(t, "Provisioning", report.Findings[1].Target)
}

func TestAzdReportDecoder_AllChecksPass(t *testing.T) {
	md := "# Report\n\n- [x] azure.yaml present\n- [x] provision succeeded\n"
	report, err := NewAzdReportDecoder().Decode(zipWithFile(t, "report.md", []byte(md)))
	require.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Empty(t, report.Findings)
}

func TestAzdReportDecoder_NoMarkdownEntry(t *testing.T) {
	_, err := NewAzdReportDecoder().Decode(zipWithFile(t, "results.json", []byte("{}")))
	require.Error(t, err)
	assert.Equal(t, core.KindDecode, core.KindOf(err))
}
