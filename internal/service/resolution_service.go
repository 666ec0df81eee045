package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/tracker-bot/internal/domain"
	"github.com/spec-kit/tracker-bot/internal/events"
	"github.com/spec-kit/tracker-bot/internal/tracker"
)

// ResolutionOutcome names the terminal result of one resolution attempt.
type ResolutionOutcome string

const (
	OutcomeResolved                  ResolutionOutcome = "resolved"
	OutcomeAlreadyResolved           ResolutionOutcome = "already_resolved"
	OutcomeIssueNotFound             ResolutionOutcome = "issue_not_found"
	OutcomeTransitionListUnavailable ResolutionOutcome = "transition_list_unavailable"
	OutcomeNoResolvingTransition     ResolutionOutcome = "no_resolving_transition"
	OutcomeTransitionApplyFailed     ResolutionOutcome = "transition_apply_failed"
)

// ResolutionService drives an issue to the Resolved status through whatever
// transition the tracker currently offers. Transition identifiers are
// workflow-admin controlled, so only the target status name is matched.
type ResolutionService struct {
	tracker    tracker.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewResolutionService constructs the service.
func NewResolutionService(trackerClient tracker.Client, dispatcher events.Dispatcher, logger *zap.Logger) *ResolutionService {
	return &ResolutionService{tracker: trackerClient, dispatcher: dispatcher, logger: logger}
}

// Resolve executes the fetch, short-circuit, list, select, apply sequence.
// Each step starts only after the prior one succeeded; a failed apply leaves
// the issue untouched with no compensating action.
func (s *ResolutionService) Resolve(ctx context.Context, req domain.ResolutionRequest) (ResolutionOutcome, error) {
	issue, err := s.tracker.FetchIssue(ctx, req.IssueKey)
	if err != nil {
		s.logger.Info("resolution fetch failed", zap.String("key", req.IssueKey), zap.Error(err))
		return OutcomeIssueNotFound, err
	}

	if issue.IsResolved() {
		return OutcomeAlreadyResolved, nil
	}

	transitions, err := s.tracker.ListTransitions(ctx, issue.Key)
	if err != nil {
		s.logger.Warn("transition list unavailable", zap.String("key", issue.Key), zap.Error(err))
		return OutcomeTransitionListUnavailable, err
	}

	selected, ok := selectResolvingTransition(transitions)
	if !ok {
		return OutcomeNoResolvingTransition, nil
	}

	if err := s.tracker.ApplyTransition(ctx, issue.Key, selected.ID, req.Resolution, req.Comment); err != nil {
		s.logger.Warn("transition apply failed",
			zap.String("key", issue.Key),
			zap.String("transition_id", selected.ID),
			zap.Error(err))
		return OutcomeTransitionApplyFailed, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventIssueResolved,
		IssueKey: issue.Key,
		Payload: events.IssueResolvedPayload{
			Resolution:   req.Resolution,
			TransitionID: selected.ID,
			Comment:      req.Comment,
		},
	})
	return OutcomeResolved, nil
}

// selectResolvingTransition scans transitions in tracker order and picks the
// first one targeting Resolved; later matches are ignored.
func selectResolvingTransition(transitions []domain.Transition) (domain.Transition, bool) {
	for _, t := range transitions {
		if t.TargetStatus == domain.ResolvedStatusName {
			return t, true
		}
	}
	return domain.Transition{}, false
}

func (s *ResolutionService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
