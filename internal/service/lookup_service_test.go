package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/tracker-bot/internal/config"
	"github.com/spec-kit/tracker-bot/internal/domain"
	"github.com/spec-kit/tracker-bot/internal/service"
	apperrors "github.com/spec-kit/tracker-bot/pkg/util"
)

func TestLookupRendersEstimateAsHoursAndMinutes(t *testing.T) {
	estimate := int64(5400)
	assignee := "Jane Doe"
	tracker := &fakeTracker{issue: &domain.Issue{
		Key:                 "PROJ-7",
		Type:                "Bug",
		Summary:             "it breaks",
		Status:              "Open",
		Assignee:            &assignee,
		TimeEstimateSeconds: &estimate,
		URL:                 "https://jira.example.com/browse/PROJ-7",
	}}
	svc := service.NewLookupService(tracker, config.DefaultReplyTemplate, zap.NewNop())

	display, err := svc.Lookup(context.Background(), "PROJ-7")
	require.NoError(t, err)
	require.Equal(t, " / 1h30m", display.DisplayTime)
	require.Contains(t, display.Text, " / 1h30m")
	require.Contains(t, display.Text, "Jane Doe")
	require.Contains(t, display.Text, "https://jira.example.com/browse/PROJ-7")
}

func TestLookupOmitsTimeSuffixWhenNoEstimate(t *testing.T) {
	tracker := &fakeTracker{issue: &domain.Issue{
		Key:     "PROJ-1",
		Type:    "Task",
		Summary: "do the thing",
		Status:  "Open",
		URL:     "https://jira.example.com/browse/PROJ-1",
	}}
	svc := service.NewLookupService(tracker, config.DefaultReplyTemplate, zap.NewNop())

	display, err := svc.Lookup(context.Background(), "PROJ-1")
	require.NoError(t, err)
	require.Empty(t, display.DisplayTime)
	require.NotContains(t, display.Text, "0h0m")
	require.Contains(t, display.Text, "Unassigned")
}

func TestLookupReportsNotFoundOnFetchFailure(t *testing.T) {
	tracker := &fakeTracker{fetchErr: errors.New("boom")}
	svc := service.NewLookupService(tracker, config.DefaultReplyTemplate, zap.NewNop())

	_, err := svc.Lookup(context.Background(), "PROJ-404")
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", apperrors.Code(err))
	require.Equal(t, 1, tracker.fetchCalls)
}

func TestLookupRejectsEmptyKey(t *testing.T) {
	tracker := &fakeTracker{}
	svc := service.NewLookupService(tracker, config.DefaultReplyTemplate, zap.NewNop())

	_, err := svc.Lookup(context.Background(), "  ")
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.Code(err))
	require.Zero(t, tracker.fetchCalls)
}

func TestFormatDisplayTime(t *testing.T) {
	cases := []struct {
		name    string
		seconds *int64
		want    string
	}{
		{"nil estimate", nil, ""},
		{"ninety minutes", ptr(int64(5400)), " / 1h30m"},
		{"under an hour", ptr(int64(1800)), " / 0h30m"},
		{"exact hours", ptr(int64(7200)), " / 2h0m"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, service.FormatDisplayTime(tc.seconds))
		})
	}
}

func TestRenderTemplateSubstitutesPlaceholders(t *testing.T) {
	out := service.RenderTemplate("{key} [{status}]", map[string]string{
		"key":    "PROJ-1",
		"status": "Open",
	})
	require.Equal(t, "PROJ-1 [Open]", out)
}

func ptr[T any](v T) *T {
	return &v
}
