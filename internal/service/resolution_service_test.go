package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/tracker-bot/internal/domain"
	"github.com/spec-kit/tracker-bot/internal/service"
)

func openIssue(key string) *domain.Issue {
	return &domain.Issue{Key: key, Type: "Bug", Summary: "it breaks", Status: "Open"}
}

func TestResolveAppliesFirstResolvingTransition(t *testing.T) {
	tracker := &fakeTracker{
		issue: openIssue("PROJ-2"),
		transitions: []domain.Transition{
			{ID: "2", TargetStatus: "In Progress"},
			{ID: "5", TargetStatus: "Resolved"},
			{ID: "9", TargetStatus: "Resolved"},
		},
	}
	svc := service.NewResolutionService(tracker, nil, zap.NewNop())

	outcome, err := svc.Resolve(context.Background(), domain.ResolutionRequest{
		IssueKey:   "PROJ-2",
		Resolution: domain.ResolutionFixed,
		Comment:    "done",
	})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeResolved, outcome)

	require.Len(t, tracker.applied, 1)
	require.Equal(t, "5", tracker.applied[0].TransitionID)
	require.Equal(t, "Fixed", tracker.applied[0].Resolution)
	require.Equal(t, "done", tracker.applied[0].Comment)
}

func TestResolveShortCircuitsWhenAlreadyResolved(t *testing.T) {
	tracker := &fakeTracker{
		issue: &domain.Issue{Key: "PROJ-3", Status: "Resolved"},
	}
	svc := service.NewResolutionService(tracker, nil, zap.NewNop())

	outcome, err := svc.Resolve(context.Background(), domain.ResolutionRequest{
		IssueKey:   "PROJ-3",
		Resolution: domain.ResolutionWontFix,
	})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeAlreadyResolved, outcome)

	require.Zero(t, tracker.listCalls)
	require.Empty(t, tracker.applied)
}

func TestResolveFailsWhenNoResolvingTransition(t *testing.T) {
	tracker := &fakeTracker{
		issue: openIssue("PROJ-4"),
		transitions: []domain.Transition{
			{ID: "2", TargetStatus: "In Progress"},
			{ID: "3", TargetStatus: "Closed"},
		},
	}
	svc := service.NewResolutionService(tracker, nil, zap.NewNop())

	outcome, err := svc.Resolve(context.Background(), domain.ResolutionRequest{
		IssueKey:   "PROJ-4",
		Resolution: domain.ResolutionFixed,
	})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeNoResolvingTransition, outcome)
	require.Empty(t, tracker.applied)
}

func TestResolveReportsFetchFailure(t *testing.T) {
	tracker := &fakeTracker{fetchErr: errors.New("boom")}
	svc := service.NewResolutionService(tracker, nil, zap.NewNop())

	outcome, err := svc.Resolve(context.Background(), domain.ResolutionRequest{
		IssueKey:   "PROJ-404",
		Resolution: domain.ResolutionFixed,
	})
	require.Error(t, err)
	require.Equal(t, service.OutcomeIssueNotFound, outcome)
	require.Zero(t, tracker.listCalls)
}

func TestResolveReportsTransitionListFailure(t *testing.T) {
	tracker := &fakeTracker{
		issue:   openIssue("PROJ-5"),
		listErr: errors.New("boom"),
	}
	svc := service.NewResolutionService(tracker, nil, zap.NewNop())

	outcome, err := svc.Resolve(context.Background(), domain.ResolutionRequest{
		IssueKey:   "PROJ-5",
		Resolution: domain.ResolutionFixed,
	})
	require.Error(t, err)
	require.Equal(t, service.OutcomeTransitionListUnavailable, outcome)
	require.Empty(t, tracker.applied)
}

func TestResolveReportsApplyFailureWithoutCompensation(t *testing.T) {
	tracker := &fakeTracker{
		issue:       openIssue("PROJ-6"),
		transitions: []domain.Transition{{ID: "5", TargetStatus: "Resolved"}},
		applyErr:    errors.New("boom"),
	}
	svc := service.NewResolutionService(tracker, nil, zap.NewNop())

	outcome, err := svc.Resolve(context.Background(), domain.ResolutionRequest{
		IssueKey:   "PROJ-6",
		Resolution: domain.ResolutionFixed,
	})
	require.Error(t, err)
	require.Equal(t, service.OutcomeTransitionApplyFailed, outcome)
	require.Empty(t, tracker.applied)
	require.Equal(t, 1, tracker.listCalls)
}
