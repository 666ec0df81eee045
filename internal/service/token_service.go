package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/tracker-bot/internal/config"
	"github.com/spec-kit/tracker-bot/internal/events"
	"github.com/spec-kit/tracker-bot/internal/oauth"
	"github.com/spec-kit/tracker-bot/internal/repository"
	apperrors "github.com/spec-kit/tracker-bot/pkg/util"
)

// TokenService owns the per-user OAuth1 credential lifecycle: the RSA-SHA1
// request-token step, durable token state, and the access-token exchange.
type TokenService struct {
	tokens     repository.TokenRepository
	cfg        config.OAuthConfig
	endpoints  oauth.Endpoints
	loadKey    func(path string) (*rsa.PrivateKey, error)
	newFlow    func(consumerKey string, key *rsa.PrivateKey, endpoints oauth.Endpoints) oauth.Flow
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TokenDependencies bundles collaborators for the token service.
type TokenDependencies struct {
	TokenRepo  repository.TokenRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger

	// Overridable in tests; nil selects the real implementations.
	LoadKey func(path string) (*rsa.PrivateKey, error)
	NewFlow func(consumerKey string, key *rsa.PrivateKey, endpoints oauth.Endpoints) oauth.Flow
}

// AuthorizationGrant is handed back to the user after the request-token step.
type AuthorizationGrant struct {
	AuthorizeURL string
	Instruction  string
}

// NewTokenService constructs the service.
func NewTokenService(cfg config.OAuthConfig, endpoints oauth.Endpoints, deps TokenDependencies) *TokenService {
	loadKey := deps.LoadKey
	if loadKey == nil {
		loadKey = oauth.LoadPrivateKey
	}
	newFlow := deps.NewFlow
	if newFlow == nil {
		newFlow = oauth.NewRSAFlow
	}
	return &TokenService{
		tokens:     deps.TokenRepo,
		cfg:        cfg,
		endpoints:  endpoints,
		loadKey:    loadKey,
		newFlow:    newFlow,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// AcquireRequestToken runs the OAuth1 request-token step for a user. When the
// user already holds an access token the call fails unless force is set; a
// forced acquisition overwrites only the request-token fields of the record.
func (s *TokenService) AcquireRequestToken(ctx context.Context, userIdentity string, force bool) (*AuthorizationGrant, error) {
	record, err := s.tokens.Get(ctx, userIdentity)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if record != nil && record.HasAccessToken() && !force {
		return nil, apperrors.NewStateConflict(
			"you already have a token; use force to request a new one",
			map[string]any{"user": userIdentity})
	}

	key, err := s.loadKey(s.cfg.RSAKeyPath)
	if err != nil {
		// Operator-fixable condition, logged distinctly from transient failures.
		s.logger.Error("consumer key material unavailable",
			zap.String("path", s.cfg.RSAKeyPath), zap.Error(err))
		return nil, apperrors.NewConfigurationError("consumer key material unavailable", err)
	}

	flow := s.newFlow(s.cfg.ConsumerKey, key, s.endpoints)
	token, secret, err := flow.RequestToken()
	if err != nil {
		return nil, apperrors.NewTransportError("request-token exchange failed", err)
	}

	if err := s.tokens.UpsertRequestToken(ctx, userIdentity, token, secret); err != nil {
		return nil, apperrors.MapError(err)
	}

	authorizeURL, err := flow.AuthorizationURL(token)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventTokenRequested,
		UserIdentity: userIdentity,
		Payload:      events.TokenRequestedPayload{Forced: force},
	})

	return &AuthorizationGrant{
		AuthorizeURL: authorizeURL,
		Instruction:  fmt.Sprintf("After authorizing %s there, run the committoken command with the verification code.", s.cfg.ConsumerName),
	}, nil
}

// CommitToken finishes the three-legged handshake: it exchanges the stored,
// user-authorized request token plus verifier for an access token and
// persists the access-token fields.
func (s *TokenService) CommitToken(ctx context.Context, userIdentity, verifier string) error {
	record, err := s.tokens.Get(ctx, userIdentity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("pending request token", map[string]any{"user": userIdentity})
		}
		return apperrors.MapError(err)
	}
	if record.RequestToken == "" {
		return apperrors.NewNotFound("pending request token", map[string]any{"user": userIdentity})
	}

	key, err := s.loadKey(s.cfg.RSAKeyPath)
	if err != nil {
		s.logger.Error("consumer key material unavailable",
			zap.String("path", s.cfg.RSAKeyPath), zap.Error(err))
		return apperrors.NewConfigurationError("consumer key material unavailable", err)
	}

	flow := s.newFlow(s.cfg.ConsumerKey, key, s.endpoints)
	accessToken, accessSecret, err := flow.AccessToken(record.RequestToken, record.RequestTokenSecret, verifier)
	if err != nil {
		return apperrors.NewTransportError("access-token exchange failed", err)
	}

	if err := s.tokens.SetAccessToken(ctx, userIdentity, accessToken, accessSecret); err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventTokenCommitted,
		UserIdentity: userIdentity,
	})
	return nil
}

func (s *TokenService) publishEvent(ctx context.Context, event events.Event) {
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
