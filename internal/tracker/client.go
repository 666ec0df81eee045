package tracker

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spec-kit/tracker-bot/internal/config"
	"github.com/spec-kit/tracker-bot/internal/domain"
	apperrors "github.com/spec-kit/tracker-bot/pkg/util"
)

// Client exposes the tracker operations the bot consumes.
type Client interface {
	FetchIssue(ctx context.Context, key string) (*domain.Issue, error)
	ListTransitions(ctx context.Context, key string) ([]domain.Transition, error)
	ApplyTransition(ctx context.Context, key, transitionID, resolution, comment string) error
	AddComment(ctx context.Context, key, body string) error
}

type jiraClient struct {
	cfg    config.JiraConfig
	client *http.Client
}

// NewJiraClient creates a Jira REST v2 client using the bot's basic-auth session.
func NewJiraClient(cfg config.JiraConfig) Client {
	transport := http.DefaultTransport
	if !cfg.VerifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &jiraClient{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: transport,
		},
	}
}

// FetchIssue retrieves a single issue snapshot.
func (j *jiraClient) FetchIssue(ctx context.Context, key string) (*domain.Issue, error) {
	url := fmt.Sprintf("%s/rest/api/2/issue/%s", j.cfg.BaseURL, key)

	var issue jiraIssue
	if err := j.doJSON(ctx, http.MethodGet, url, nil, http.StatusOK, &issue); err != nil {
		return nil, err
	}

	result := &domain.Issue{
		Key:                 issue.Key,
		Type:                issue.Fields.IssueType.Name,
		Summary:             issue.Fields.Summary,
		Status:              issue.Fields.Status.Name,
		TimeEstimateSeconds: issue.Fields.TimeEstimate,
		URL:                 j.cfg.BaseURL + "/browse/" + issue.Key,
	}
	if issue.Fields.Assignee != nil && issue.Fields.Assignee.DisplayName != "" {
		name := issue.Fields.Assignee.DisplayName
		result.Assignee = &name
	}
	return result, nil
}

// ListTransitions returns the transitions currently offered for the issue,
// preserving tracker order.
func (j *jiraClient) ListTransitions(ctx context.Context, key string) ([]domain.Transition, error) {
	url := fmt.Sprintf("%s/rest/api/2/issue/%s/transitions", j.cfg.BaseURL, key)

	var list jiraTransitionList
	if err := j.doJSON(ctx, http.MethodGet, url, nil, http.StatusOK, &list); err != nil {
		return nil, err
	}

	transitions := make([]domain.Transition, 0, len(list.Transitions))
	for _, t := range list.Transitions {
		transitions = append(transitions, domain.Transition{
			ID:           t.ID,
			TargetStatus: t.To.Name,
		})
	}
	return transitions, nil
}

// ApplyTransition moves the issue through a transition, attaching the
// resolution label and an optional comment in the same request.
func (j *jiraClient) ApplyTransition(ctx context.Context, key, transitionID, resolution, comment string) error {
	url := fmt.Sprintf("%s/rest/api/2/issue/%s/transitions", j.cfg.BaseURL, key)

	payload := jiraTransitionRequest{
		Transition: jiraTransitionID{ID: transitionID},
	}
	if resolution != "" {
		payload.Fields = &jiraFieldsPatch{Resolution: &jiraNamed{Name: resolution}}
	}
	if comment != "" {
		payload.Update = &jiraUpdatePatch{
			Comment: []jiraCommentOp{{Add: jiraCommentBody{Body: comment}}},
		}
	}

	return j.doJSON(ctx, http.MethodPost, url, payload, http.StatusNoContent, nil)
}

// AddComment posts a standalone comment on the issue.
func (j *jiraClient) AddComment(ctx context.Context, key, body string) error {
	url := fmt.Sprintf("%s/rest/api/2/issue/%s/comment", j.cfg.BaseURL, key)
	payload := jiraCommentBody{Body: body}
	return j.doJSON(ctx, http.MethodPost, url, payload, http.StatusCreated, nil)
}

func (j *jiraClient) doJSON(ctx context.Context, method, url string, payload any, wantStatus int, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.SetBasicAuth(j.cfg.Username, j.cfg.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return apperrors.NewTransportError("tracker request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFound("issue", nil)
	}
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		return apperrors.NewTransportError(
			fmt.Sprintf("tracker returned %d: %s", resp.StatusCode, string(body)), nil)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.NewTransportError("decode tracker response", err)
		}
	}
	return nil
}
