package decode

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/template-doctor/template-doctor/internal/core"
)

func zipWithFile(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(name)
	require.NoError(t, err)
	_, err = f.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const trivyJSON = `{
	"ArtifactName": "myregistry/api:latest",
	"Results": [
		{
			"Target": "myregistry/api:latest (alpine 3.19)",
			"Vulnerabilities": [
				{"VulnerabilityID": "CVE-2024-0001", "Severity": "CRITICAL", "Title": "heap overflow"},
				{"VulnerabilityID": "CVE-2024-0002", "Severity": "HIGH", "Title": "use after free"},
				{"VulnerabilityID": "CVE-2024-0003", "Severity": "MEDIUM", "Title": "info leak"},
				{"VulnerabilityID": "CVE-2024-0004", "Severity": "LOW", "Title": "minor"}
			]
		}
	]
}`

func TestTrivyDecoder(t *testing.T) {
	data := zipWithFile(t, "results.json", []byte(trivyJSON))

	report, err := NewTrivyDecoder().Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "myregistry/api:latest", report.ArtifactName)
	assert.False(t, report.Passed)
	assert.Len(t, report.Findings, 4)
	assert.Equal(t, 1, report.Summary[core.SeverityCritical])
	assert.Equal(t, 1, report.Summary[core.SeverityError])
	assert.Equal(t, 1, report.Summary[core.SeverityWarning])
	assert.Equal(t, 1, report.Summary[core.SeverityInfo])
	assert.Equal(t, "CVE-2024-0001", report.Findings[0].ID)
}

func TestTrivyDecoder_CleanScanPasses(t *testing.T) {
	data := zipWithFile(t, "results.json", []byte(`{"ArtifactName":"img","Results":[]}`))

	report, err := NewTrivyDecoder().Decode(data)
	require.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Empty(t, report.Findings)
}

func TestTrivyDecoder_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not a zip", []byte("plain text")},
		{"zip without json", zipWithFile(t, "readme.txt", []byte("hi"))},
		{"zip with malformed json", zipWithFile(t, "results.json", []byte("{nope"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTrivyDecoder().Decode(tt.data)
			require.Error(t, err)
			assert.Equal(t, core.KindDecode, core.KindOf(err))
		})
	}
}
