package validate

import (
	"context"
	"testing"

	gogithub "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/template-doctor/template-doctor/internal/core"
)

const azdPassingReport = `# azd Validation Report

## Provisioning
- [x] azd provision succeeded
- [x] azd deploy succeeded
`

const azdFailingReport = `# azd Validation Report

## Provisioning
- [ ] azd provision failed
`

func TestAzdValidator_Run(t *testing.T) {
	fake := &fakeGitHub{
		artifactsFn: func(corr string) []core.Artifact {
			return []core.Artifact{{ID: 5, Name: "validation-result-" + corr}}
		},
		downloads: map[int64][]byte{
			5: zipArtifact(t, "report.md", []byte(azdPassingReport)),
		},
	}
	store := &memStore{}
	v := NewAzdValidator(newTestOrchestrator(fake), fake, testTarget(), nil, store, testLogger())

	result, err := v.Run(context.Background(), "contoso/todo-template")
	require.NoError(t, err)

	assert.True(t, result.Compliant)
	require.NotNil(t, result.Report)
	assert.True(t, result.Report.Passed)
	assert.Equal(t, azdPassingReport, result.Report.Markdown)

	require.Len(t, store.saved, 1)
	assert.Equal(t, core.ValidationAzd, store.saved[0].Type)
	assert.Equal(t, azdPassingReport, store.saved[0].Report)
}

func TestAzdValidator_Run_FailedChecks(t *testing.T) {
	fake := &fakeGitHub{
		artifactsFn: func(corr string) []core.Artifact {
			return []core.Artifact{{ID: 5, Name: "validation-result-" + corr}}
		},
		downloads: map[int64][]byte{
			5: zipArtifact(t, "report.md", []byte(azdFailingReport)),
		},
	}
	v := NewAzdValidator(newTestOrchestrator(fake), fake, testTarget(), nil, nil, testLogger())

	result, err := v.Run(context.Background(), "contoso/todo-template")
	require.NoError(t, err)
	assert.False(t, result.Compliant, "a failed checklist item blocks compliance even when the run succeeded")
}

func TestAzdValidator_Run_MissingReport(t *testing.T) {
	fake := &fakeGitHub{
		artifactsFn: func(string) []core.Artifact {
			return []core.Artifact{{ID: 9, Name: "unrelated-logs"}}
		},
	}
	v := NewAzdValidator(newTestOrchestrator(fake), fake, testTarget(), nil, nil, testLogger())

	_, err := v.Run(context.Background(), "contoso/todo-template")
	require.Error(t, err)
	assert.Equal(t, core.KindArtifactMissing, core.KindOf(err))
}

func TestAzdValidator_Status(t *testing.T) {
	fake := &fakeGitHub{
		statusRun: &gogithub.WorkflowRun{
			ID:         gogithub.Ptr(fakeRunID),
			Status:     gogithub.Ptr(string(core.RunCompleted)),
			Conclusion: gogithub.Ptr(string(core.ConclusionFailure)),
			HTMLURL:    gogithub.Ptr(fakeRunURL),
		},
		jobs: []*gogithub.WorkflowJob{
			{
				Name:       gogithub.Ptr("provision"),
				Status:     gogithub.Ptr(string(core.RunCompleted)),
				Conclusion: gogithub.Ptr(string(core.ConclusionFailure)),
				Steps: []*gogithub.TaskStep{
					{Name: gogithub.Ptr("azd provision"), Conclusion: gogithub.Ptr(string(core.ConclusionFailure))},
					{Name: gogithub.Ptr("checkout"), Conclusion: gogithub.Ptr(string(core.ConclusionSuccess))},
				},
			},
			{
				Name:       gogithub.Ptr("lint"),
				Status:     gogithub.Ptr(string(core.RunCompleted)),
				Conclusion: gogithub.Ptr(string(core.ConclusionSuccess)),
			},
		},
		artifactsFn: func(string) []core.Artifact {
			return []core.Artifact{{ID: 5, Name: "validation-result-contoso"}}
		},
		downloads: map[int64][]byte{
			5: zipArtifact(t, "report.md", []byte(azdFailingReport)),
		},
	}
	v := NewAzdValidator(newTestOrchestrator(fake), fake, testTarget(), nil, nil, testLogger())

	status, err := v.Status(context.Background(), "", fakeRunID)
	require.NoError(t, err)

	assert.Equal(t, "template-doctor/workflows", status.OwnerRepo, "empty ownerRepo defaults to the workflows repository")
	assert.Equal(t, string(core.RunCompleted), status.Status)
	assert.Equal(t, string(core.ConclusionFailure), status.Conclusion)

	require.Len(t, status.Jobs, 2)
	require.Len(t, status.FailedJobs, 1)
	assert.Equal(t, "provision", status.FailedJobs[0].Name)
	assert.Equal(t, []string{"azd provision"}, status.FailedJobs[0].FailedSteps)
	assert.Contains(t, status.ErrorSummary, "provision (azd provision)")

	require.NotNil(t, status.AzdValidation)
	assert.False(t, status.AzdValidation.Passed)
}

func TestAzdValidator_Status_InProgress(t *testing.T) {
	fake := &fakeGitHub{
		statusRun: &gogithub.WorkflowRun{
			ID:      gogithub.Ptr(fakeRunID),
			Status:  gogithub.Ptr(string(core.RunInProgress)),
			HTMLURL: gogithub.Ptr(fakeRunURL),
		},
	}
	v := NewAzdValidator(newTestOrchestrator(fake), fake, testTarget(), nil, nil, testLogger())

	status, err := v.Status(context.Background(), "contoso/other-repo", fakeRunID)
	require.NoError(t, err)

	assert.Equal(t, "contoso/other-repo", status.OwnerRepo)
	assert.Equal(t, string(core.RunInProgress), status.Status)
	assert.Nil(t, status.AzdValidation, "no report is fetched while the run is still running")
}

func TestAzdValidator_Cancel(t *testing.T) {
	fake := &fakeGitHub{}
	v := NewAzdValidator(newTestOrchestrator(fake), fake, testTarget(), nil, nil, testLogger())

	require.NoError(t, v.Cancel(context.Background(), "", fakeRunID))
	assert.Equal(t, []int64{fakeRunID}, fake.cancelled)
}
