package decode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/template-doctor/template-doctor/internal/core"
)

// OSSF scorecard workflows encode the decimal score into the artifact name
// itself, with "_" standing in for the decimal point: a name ending in
// "_score_8_5" means 8.5. This naming convention is a wire contract with the
// remote workflow definitions and must be preserved bit-exact.
var scoreSuffixRegex = regexp.MustCompile(`_score_(\d+(?:_\d+)?)$`)

// EncodeScore renders a score in the artifact-name form: 7.25 -> "7_25".
func EncodeScore(score float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(score, 'f', -1, 64), ".", "_")
}

// DecodeScore parses the artifact-name form back: "7_25" -> 7.25.
func DecodeScore(encoded string) (float64, error) {
	score, err := strconv.ParseFloat(strings.Replace(encoded, "_", ".", 1), 64)
	if err != nil {
		return 0, core.WrapError(core.KindDecode, "malformed score encoding "+encoded, err)
	}
	return score, nil
}

// ParseScoreFromArtifactName extracts the score from an OSSF artifact name.
func ParseScoreFromArtifactName(name string) (float64, error) {
	m := scoreSuffixRegex.FindStringSubmatch(name)
	if m == nil {
		return 0, core.NewError(core.KindDecode,
			fmt.Sprintf("artifact name %q carries no score suffix", name))
	}
	return DecodeScore(m[1])
}

// ValidateMinScore checks a caller-supplied minimum score. 0 and 10 are both
// valid; anything outside the scorecard's range is rejected.
func ValidateMinScore(min float64) error {
	if min < 0 || min > 10 {
		return core.NewError(core.KindInvalidFormat,
			fmt.Sprintf("minScore must be between 0 and 10, got %v", min))
	}
	return nil
}
