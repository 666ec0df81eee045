package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tracker-bot/internal/domain"
	"github.com/spec-kit/tracker-bot/internal/tracker"
	apperrors "github.com/spec-kit/tracker-bot/pkg/util"
)

// LookupService formats tracker issues into display records.
type LookupService struct {
	tracker  tracker.Client
	template string
	logger   *zap.Logger
}

// IssueDisplay is the rendered result of a lookup.
type IssueDisplay struct {
	Issue       domain.Issue
	DisplayTime string
	Text        string
}

// NewLookupService constructs the service.
func NewLookupService(trackerClient tracker.Client, template string, logger *zap.Logger) *LookupService {
	return &LookupService{tracker: trackerClient, template: template, logger: logger}
}

// Lookup fetches an issue and renders it through the reply template. A failed
// fetch is a recovered condition reported as not-found; there are no retries.
func (s *LookupService) Lookup(ctx context.Context, key string) (*IssueDisplay, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperrors.NewValidationError("issue key required", nil)
	}

	issue, err := s.tracker.FetchIssue(ctx, key)
	if err != nil {
		s.logger.Info("issue lookup failed", zap.String("key", key), zap.Error(err))
		return nil, apperrors.NewNotFound("issue", map[string]any{"key": key})
	}

	displayTime := FormatDisplayTime(issue.TimeEstimateSeconds)
	text := RenderTemplate(s.template, map[string]string{
		"type":        issue.Type,
		"key":         issue.Key,
		"summary":     issue.Summary,
		"status":      issue.Status,
		"assignee":    issue.AssigneeDisplay(),
		"displayTime": displayTime,
		"url":         issue.URL,
	})

	return &IssueDisplay{
		Issue:       *issue,
		DisplayTime: displayTime,
		Text:        text,
	}, nil
}

// FormatDisplayTime renders a remaining-time estimate as " / XhYm". An absent
// estimate produces no suffix at all rather than a zero rendering.
func FormatDisplayTime(seconds *int64) string {
	if seconds == nil {
		return ""
	}
	hours := *seconds / 3600
	minutes := *seconds / 60 % 60
	return fmt.Sprintf(" / %dh%dm", hours, minutes)
}

// RenderTemplate substitutes {name} placeholders in an operator template.
func RenderTemplate(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for name, value := range values {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
