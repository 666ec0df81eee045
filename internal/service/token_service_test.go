package service_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/tracker-bot/internal/config"
	"github.com/spec-kit/tracker-bot/internal/domain"
	"github.com/spec-kit/tracker-bot/internal/oauth"
	"github.com/spec-kit/tracker-bot/internal/service"
	apperrors "github.com/spec-kit/tracker-bot/pkg/util"
)

// memoryTokenRepo mimics the SQL upsert semantics of the real repository.
type memoryTokenRepo struct {
	records map[string]domain.TokenRecord
	upserts int
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{records: make(map[string]domain.TokenRecord)}
}

func (m *memoryTokenRepo) Get(ctx context.Context, user string) (*domain.TokenRecord, error) {
	record, ok := m.records[user]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := record
	return &copied, nil
}

func (m *memoryTokenRepo) UpsertRequestToken(ctx context.Context, user, token, secret string) error {
	m.upserts++
	record := m.records[user]
	record.UserIdentity = user
	record.RequestToken = token
	record.RequestTokenSecret = secret
	m.records[user] = record
	return nil
}

func (m *memoryTokenRepo) SetAccessToken(ctx context.Context, user, token, secret string) error {
	record, ok := m.records[user]
	if !ok {
		return pgx.ErrNoRows
	}
	record.AccessToken = &token
	record.AccessTokenSecret = &secret
	m.records[user] = record
	return nil
}

// fakeFlow stands in for the OAuth1 exchanges.
type fakeFlow struct {
	token        string
	secret       string
	requestErr   error
	accessToken  string
	accessSecret string
	accessErr    error

	requestCalls int
	lastVerifier string
}

func (f *fakeFlow) RequestToken() (string, string, error) {
	f.requestCalls++
	if f.requestErr != nil {
		return "", "", f.requestErr
	}
	return f.token, f.secret, nil
}

func (f *fakeFlow) AuthorizationURL(requestToken string) (string, error) {
	return "https://jira.example.com/plugins/servlet/oauth/authorize?oauth_token=" + requestToken, nil
}

func (f *fakeFlow) AccessToken(requestToken, requestSecret, verifier string) (string, string, error) {
	f.lastVerifier = verifier
	if f.accessErr != nil {
		return "", "", f.accessErr
	}
	return f.accessToken, f.accessSecret, nil
}

type tokenHarness struct {
	repo     *memoryTokenRepo
	flow     *fakeFlow
	keyLoads int
	keyErr   error
	svc      *service.TokenService
}

func newTokenHarness(t *testing.T) *tokenHarness {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	h := &tokenHarness{
		repo: newMemoryTokenRepo(),
		flow: &fakeFlow{token: "req-token", secret: "req-secret", accessToken: "acc-token", accessSecret: "acc-secret"},
	}
	h.svc = service.NewTokenService(
		config.OAuthConfig{ConsumerKey: "bot-consumer", ConsumerName: "tracker-bot", RSAKeyPath: "/etc/bot/jira.pem"},
		oauth.Endpoints{},
		service.TokenDependencies{
			TokenRepo: h.repo,
			Logger:    zap.NewNop(),
			LoadKey: func(path string) (*rsa.PrivateKey, error) {
				h.keyLoads++
				if h.keyErr != nil {
					return nil, h.keyErr
				}
				return key, nil
			},
			NewFlow: func(consumerKey string, key *rsa.PrivateKey, endpoints oauth.Endpoints) oauth.Flow {
				return h.flow
			},
		})
	return h
}

func TestAcquireStoresRequestTokenAndReturnsAuthorizeURL(t *testing.T) {
	h := newTokenHarness(t)

	grant, err := h.svc.AcquireRequestToken(context.Background(), "alice", false)
	require.NoError(t, err)
	require.Contains(t, grant.AuthorizeURL, "oauth_token=req-token")
	require.NotEmpty(t, grant.Instruction)

	record := h.repo.records["alice"]
	require.Equal(t, "req-token", record.RequestToken)
	require.Equal(t, "req-secret", record.RequestTokenSecret)
	require.False(t, record.HasAccessToken())
}

func TestAcquireIsIdempotentWhenAccessTokenExists(t *testing.T) {
	h := newTokenHarness(t)
	access := "existing-access"
	accessSecret := "existing-secret"
	h.repo.records["alice"] = domain.TokenRecord{
		UserIdentity:      "alice",
		AccessToken:       &access,
		AccessTokenSecret: &accessSecret,
	}

	_, err := h.svc.AcquireRequestToken(context.Background(), "alice", false)
	require.Error(t, err)
	require.Equal(t, "STATE_CONFLICT", apperrors.Code(err))

	// No second request-token call, no key load, no write.
	require.Zero(t, h.flow.requestCalls)
	require.Zero(t, h.keyLoads)
	require.Zero(t, h.repo.upserts)
}

func TestAcquireForceOverwritesOnlyRequestFields(t *testing.T) {
	h := newTokenHarness(t)
	access := "existing-access"
	accessSecret := "existing-secret"
	h.repo.records["alice"] = domain.TokenRecord{
		UserIdentity:       "alice",
		RequestToken:       "old-req",
		RequestTokenSecret: "old-req-secret",
		AccessToken:        &access,
		AccessTokenSecret:  &accessSecret,
	}

	_, err := h.svc.AcquireRequestToken(context.Background(), "alice", true)
	require.NoError(t, err)

	record := h.repo.records["alice"]
	require.Equal(t, "req-token", record.RequestToken)
	require.Equal(t, "req-secret", record.RequestTokenSecret)
	require.Equal(t, "existing-access", *record.AccessToken)
	require.Equal(t, "existing-secret", *record.AccessTokenSecret)
}

func TestAcquireProceedsWhenOnlyRequestTokenPending(t *testing.T) {
	h := newTokenHarness(t)
	h.repo.records["alice"] = domain.TokenRecord{
		UserIdentity:       "alice",
		RequestToken:       "stale-req",
		RequestTokenSecret: "stale-secret",
	}

	_, err := h.svc.AcquireRequestToken(context.Background(), "alice", false)
	require.NoError(t, err)
	require.Equal(t, "req-token", h.repo.records["alice"].RequestToken)
}

func TestAcquireReportsKeyMaterialUnavailable(t *testing.T) {
	h := newTokenHarness(t)
	h.keyErr = errors.New("no such file")

	_, err := h.svc.AcquireRequestToken(context.Background(), "alice", false)
	require.Error(t, err)
	require.Equal(t, "CONFIGURATION_ERROR", apperrors.Code(err))
	require.Zero(t, h.flow.requestCalls)
}

func TestAcquireReportsRequestTokenExchangeFailure(t *testing.T) {
	h := newTokenHarness(t)
	h.flow.requestErr = errors.New("connection refused")

	_, err := h.svc.AcquireRequestToken(context.Background(), "alice", false)
	require.Error(t, err)
	require.Equal(t, "TRANSPORT_ERROR", apperrors.Code(err))
	require.Zero(t, h.repo.upserts)
}

func TestCommitTokenRequiresPendingRequestToken(t *testing.T) {
	h := newTokenHarness(t)

	err := h.svc.CommitToken(context.Background(), "alice", "123456")
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", apperrors.Code(err))
}

func TestCommitTokenExchangesAndPersistsAccessToken(t *testing.T) {
	h := newTokenHarness(t)
	h.repo.records["alice"] = domain.TokenRecord{
		UserIdentity:       "alice",
		RequestToken:       "req-token",
		RequestTokenSecret: "req-secret",
	}

	err := h.svc.CommitToken(context.Background(), "alice", "123456")
	require.NoError(t, err)
	require.Equal(t, "123456", h.flow.lastVerifier)

	record := h.repo.records["alice"]
	require.True(t, record.HasAccessToken())
	require.Equal(t, "acc-token", *record.AccessToken)
	require.Equal(t, "acc-secret", *record.AccessTokenSecret)
}
