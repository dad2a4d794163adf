package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRoundTrip(t *testing.T) {
	tests := []struct {
		score   float64
		encoded string
	}{
		{7.25, "7_25"},
		{8.5, "8_5"},
		{10, "10"},
		{0, "0"},
		{3.1, "3_1"},
	}

	for _, tt := range tests {
		t.Run(tt.encoded, func(t *testing.T) {
			assert.Equal(t, tt.encoded, EncodeScore(tt.score))
			decoded, err := DecodeScore(tt.encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.score, decoded)
		})
	}
}

func TestParseScoreFromArtifactName(t *testing.T) {
	tests := []struct {
		name    string
		want    float64
		wantErr bool
	}{
		{"scan-image-myapp_score_7_25", 7.25, false},
		{"scorecard-3f2c1d_score_8_5", 8.5, false},
		{"scorecard-3f2c1d_score_10", 10, false},
		{"scorecard-3f2c1d_score_0", 0, false},
		{"scorecard-no-score", 0, true},
		{"scan-repo-tmpl", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScoreFromArtifactName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidateMinScore(t *testing.T) {
	assert.NoError(t, ValidateMinScore(0))
	assert.NoError(t, ValidateMinScore(10))
	assert.NoError(t, ValidateMinScore(7.5))
	assert.Error(t, ValidateMinScore(10.0001))
	assert.Error(t, ValidateMinScore(-0.1))
}
