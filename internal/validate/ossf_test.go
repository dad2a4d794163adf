package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/template-doctor/template-doctor/internal/core"
)

func TestOSSFValidator_Run_Compliant(t *testing.T) {
	fake := &fakeGitHub{
		artifactsFn: func(corr string) []core.Artifact {
			return []core.Artifact{{ID: 1, Name: "scorecard-" + corr + "_score_8_5"}}
		},
	}
	store := &memStore{}
	v := NewOSSFValidator(newTestOrchestrator(fake), testTarget(), store, testLogger())

	result, err := v.Run(context.Background(), "contoso/todo-template", 7)
	require.NoError(t, err)

	require.NotNil(t, result.Details.Score)
	assert.Equal(t, 8.5, *result.Details.Score)
	assert.True(t, result.Compliant)
	assert.Empty(t, result.Issues)
	assert.Equal(t, fakeRunID, result.GitHubRunID)

	require.Len(t, store.saved, 1)
	assert.Equal(t, core.ValidationOSSF, store.saved[0].Type)
	require.NotNil(t, store.saved[0].Score)
	assert.Equal(t, 8.5, *store.saved[0].Score)
}

func TestOSSFValidator_Run_BelowMinimum(t *testing.T) {
	fake := &fakeGitHub{
		artifactsFn: func(corr string) []core.Artifact {
			return []core.Artifact{{ID: 1, Name: "scorecard-" + corr + "_score_6_75"}}
		},
	}
	v := NewOSSFValidator(newTestOrchestrator(fake), testTarget(), nil, testLogger())

	result, err := v.Run(context.Background(), "contoso/todo-template", 8)
	require.NoError(t, err)

	assert.False(t, result.Compliant)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, core.SeverityError, result.Issues[0].Severity)
	assert.Contains(t, result.Issues[0].Message, "6.75")
}

func TestOSSFValidator_Run_MissingArtifactIsNotAnError(t *testing.T) {
	fake := &fakeGitHub{
		artifactsFn: func(string) []core.Artifact {
			return []core.Artifact{{ID: 9, Name: "unrelated-logs"}}
		},
	}
	v := NewOSSFValidator(newTestOrchestrator(fake), testTarget(), nil, testLogger())

	result, err := v.Run(context.Background(), "contoso/todo-template", 7)
	require.NoError(t, err, "a completed run without a scorecard artifact degrades, it does not fail")

	assert.Nil(t, result.Details.Score)
	assert.False(t, result.Compliant)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, core.SeverityWarning, result.Issues[0].Severity)
}

func TestOSSFValidator_Run_InvalidMinScore(t *testing.T) {
	fake := &fakeGitHub{}
	v := NewOSSFValidator(newTestOrchestrator(fake), testTarget(), nil, testLogger())

	for _, minScore := range []float64{-0.5, 10.5} {
		_, err := v.Run(context.Background(), "contoso/todo-template", minScore)
		require.Error(t, err)
		assert.Equal(t, core.KindInvalidFormat, core.KindOf(err))
	}
	assert.Empty(t, fake.dispatched, "invalid minScore fails before any dispatch")
}

func TestOSSFValidator_Run_UnparsableScore(t *testing.T) {
	fake := &fakeGitHub{
		artifactsFn: func(corr string) []core.Artifact {
			return []core.Artifact{{ID: 1, Name: "scorecard-" + corr}}
		},
	}
	v := NewOSSFValidator(newTestOrchestrator(fake), testTarget(), nil, testLogger())

	_, err := v.Run(context.Background(), "contoso/todo-template", 7)
	require.Error(t, err)
	assert.Equal(t, core.KindDecode, core.KindOf(err))
}
