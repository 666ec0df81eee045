package service_test

import (
	"context"
	"errors"

	"github.com/spec-kit/tracker-bot/internal/domain"
)

type appliedTransition struct {
	Key          string
	TransitionID string
	Resolution   string
	Comment      string
}

type addedComment struct {
	Key  string
	Body string
}

// fakeTracker is an in-memory tracker.Client for service tests.
type fakeTracker struct {
	issue       *domain.Issue
	fetchErr    error
	transitions []domain.Transition
	listErr     error
	applyErr    error
	commentErr  error

	fetchCalls int
	listCalls  int
	applied    []appliedTransition
	comments   []addedComment
}

func (f *fakeTracker) FetchIssue(ctx context.Context, key string) (*domain.Issue, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.issue == nil {
		return nil, errors.New("no issue configured")
	}
	return f.issue, nil
}

func (f *fakeTracker) ListTransitions(ctx context.Context, key string) ([]domain.Transition, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.transitions, nil
}

func (f *fakeTracker) ApplyTransition(ctx context.Context, key, transitionID, resolution, comment string) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, appliedTransition{
		Key:          key,
		TransitionID: transitionID,
		Resolution:   resolution,
		Comment:      comment,
	})
	return nil
}

func (f *fakeTracker) AddComment(ctx context.Context, key, body string) error {
	if f.commentErr != nil {
		return f.commentErr
	}
	f.comments = append(f.comments, addedComment{Key: key, Body: body})
	return nil
}
