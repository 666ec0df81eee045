package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tracker-bot/internal/config"
	"github.com/spec-kit/tracker-bot/internal/domain"
	"github.com/spec-kit/tracker-bot/internal/observability"
	"github.com/spec-kit/tracker-bot/internal/service"
	apperrors "github.com/spec-kit/tracker-bot/pkg/util"
)

// Engine routes chat messages to the issue and token services. Messages
// starting with the command prefix go through the command table; everything
// else is scanned for passive issue mentions.
type Engine struct {
	cfg         config.BotConfig
	lookups     *service.LookupService
	comments    *service.CommentService
	resolutions *service.ResolutionService
	tokens      *service.TokenService
	cooldown    Cooldown
	metrics     *observability.Metrics
	logger      *zap.Logger
	issueKeyRe  *regexp.Regexp
	commands    map[string]Command
}

// EngineDependencies bundles collaborators for the engine.
type EngineDependencies struct {
	Lookups     *service.LookupService
	Comments    *service.CommentService
	Resolutions *service.ResolutionService
	Tokens      *service.TokenService
	Cooldown    Cooldown
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewEngine compiles the issue-key pattern and builds the command table.
func NewEngine(cfg config.BotConfig, deps EngineDependencies) (*Engine, error) {
	issueKeyRe, err := regexp.Compile(cfg.IssueKeyPattern)
	if err != nil {
		return nil, fmt.Errorf("compile issue key pattern: %w", err)
	}
	issueArgRe, err := regexp.Compile("^(?:" + cfg.IssueKeyPattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("compile issue key pattern: %w", err)
	}

	e := &Engine{
		cfg:         cfg,
		lookups:     deps.Lookups,
		comments:    deps.Comments,
		resolutions: deps.Resolutions,
		tokens:      deps.Tokens,
		cooldown:    deps.Cooldown,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		issueKeyRe:  issueKeyRe,
	}

	issueArg := ArgSpec{Name: "issue", Required: true, Pattern: issueArgRe}

	e.commands = map[string]Command{}
	for _, cmd := range []Command{
		{
			Name:    "lookup",
			Help:    "show basic information about a ticket",
			Args:    []ArgSpec{issueArg},
			Handler: e.handleLookup,
		},
		{
			Name:    "comment",
			Help:    "add a comment to a ticket",
			Args:    []ArgSpec{issueArg, {Name: "comment", Required: true, Rest: true}},
			Handler: e.handleComment,
		},
		{
			Name:    "resolve",
			Help:    "close a ticket as Fixed",
			Args:    []ArgSpec{issueArg, {Name: "comment", Rest: true}},
			Handler: e.resolveWith("resolve", domain.ResolutionFixed),
		},
		{
			Name:    "wontfix",
			Help:    "close a ticket as Won't Fix",
			Args:    []ArgSpec{issueArg, {Name: "comment", Rest: true}},
			Handler: e.resolveWith("wontfix", domain.ResolutionWontFix),
		},
		{
			Name:    "gettoken",
			Help:    "request an OAuth token so the bot can act in your name",
			Args:    []ArgSpec{{Name: "force", Pattern: regexp.MustCompile(`^force$`)}},
			Handler: e.handleGetToken,
		},
		{
			Name:    "committoken",
			Help:    "finish the token handshake with the verification code",
			Args:    []ArgSpec{{Name: "verifier", Required: true, Pattern: regexp.MustCompile(`^\S+$`)}},
			Handler: e.handleCommitToken,
		},
	} {
		e.commands[cmd.Name] = cmd
	}

	return e, nil
}

// HandleMessage processes one chat message and returns zero or more replies.
func (e *Engine) HandleMessage(ctx context.Context, msg Message) []Reply {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, e.cfg.CommandPrefix) {
		return e.dispatch(ctx, msg, strings.TrimPrefix(text, e.cfg.CommandPrefix))
	}
	return e.snarf(ctx, msg)
}

func (e *Engine) dispatch(ctx context.Context, msg Message, text string) []Reply {
	fields := strings.SplitN(strings.TrimSpace(text), " ", 2)
	name := strings.ToLower(fields[0])
	cmd, ok := e.commands[name]
	if !ok {
		return []Reply{reply(fmt.Sprintf("unknown command %q", name))}
	}

	argText := ""
	if len(fields) == 2 {
		argText = fields[1]
	}
	args, err := cmd.parseArgs(argText)
	if err != nil {
		e.metrics.RecordCommand(cmd.Name, "bad_args")
		return []Reply{reply(fmt.Sprintf("Wrong syntax. Usage: %s%s", e.cfg.CommandPrefix, cmd.Usage()))}
	}
	return cmd.Handler(ctx, msg, args)
}

// snarf scans channel chatter for issue keys and replies with a short
// summary, suppressing repeats per channel through the cooldown.
func (e *Engine) snarf(ctx context.Context, msg Message) []Reply {
	keys := e.issueKeyRe.FindAllString(msg.Text, -1)
	seen := make(map[string]bool, len(keys))

	var replies []Reply
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		if e.cooldown != nil && !e.cooldown.Allow(ctx, msg.Channel, key) {
			continue
		}
		display, err := e.lookups.Lookup(ctx, key)
		if err != nil {
			replies = append(replies, actionReply(fmt.Sprintf("cannot find %s bug", key)))
			continue
		}
		replies = append(replies, reply(display.Text))
	}
	return replies
}

func (e *Engine) handleLookup(ctx context.Context, msg Message, args map[string]string) []Reply {
	key := args["issue"]
	display, err := e.lookups.Lookup(ctx, key)
	if err != nil {
		e.metrics.RecordCommand("lookup", apperrors.Code(err))
		return []Reply{actionReply(fmt.Sprintf("cannot find %s bug", key))}
	}
	e.metrics.RecordCommand("lookup", "ok")
	return []Reply{reply(display.Text)}
}

func (e *Engine) handleComment(ctx context.Context, msg Message, args map[string]string) []Reply {
	key := args["issue"]
	if err := e.comments.Comment(ctx, key, args["comment"]); err != nil {
		e.metrics.RecordCommand("comment", apperrors.Code(err))
		return []Reply{reply(fmt.Sprintf("cannot comment on %s", key))}
	}
	e.metrics.RecordCommand("comment", "ok")
	return []Reply{reply("OK")}
}

func (e *Engine) resolveWith(name, resolution string) func(context.Context, Message, map[string]string) []Reply {
	return func(ctx context.Context, msg Message, args map[string]string) []Reply {
		key := args["issue"]
		replies := []Reply{actionReply(fmt.Sprintf("attempts to close issue %s.", key))}

		outcome, _ := e.resolutions.Resolve(ctx, domain.ResolutionRequest{
			IssueKey:   key,
			Resolution: resolution,
			Comment:    args["comment"],
		})
		e.metrics.RecordCommand(name, string(outcome))
		return append(replies, e.resolutionReply(key, outcome))
	}
}

// resolutionReply maps every engine outcome to distinct wording so users can
// tell "not found" from "no path to Resolved" from "already resolved".
func (e *Engine) resolutionReply(key string, outcome service.ResolutionOutcome) Reply {
	switch outcome {
	case service.OutcomeResolved:
		return reply("Resolved successfully")
	case service.OutcomeAlreadyResolved:
		return reply(fmt.Sprintf("Too late! The %s issue is already resolved.", key))
	case service.OutcomeIssueNotFound:
		return actionReply(fmt.Sprintf("cannot find %s bug", key))
	case service.OutcomeTransitionListUnavailable:
		return reply(fmt.Sprintf("cannot get transition states for %s", key))
	case service.OutcomeNoResolvingTransition:
		return reply(fmt.Sprintf("No transition to Resolved is possible from the current state of %s.", key))
	case service.OutcomeTransitionApplyFailed:
		return reply(fmt.Sprintf("Cannot transition %s to Resolved", key))
	default:
		return reply(fmt.Sprintf("unexpected outcome for %s", key))
	}
}

func (e *Engine) handleGetToken(ctx context.Context, msg Message, args map[string]string) []Reply {
	_, force := args["force"]
	grant, err := e.tokens.AcquireRequestToken(ctx, msg.User, force)
	if err != nil {
		e.metrics.RecordCommand("gettoken", apperrors.Code(err))
		switch apperrors.Code(err) {
		case "STATE_CONFLICT":
			return []Reply{reply("You seem to already have a token. Use force to get a new one.")}
		case "CONFIGURATION_ERROR":
			return []Reply{reply("Internal bot error, cannot load the tracker consumer key.")}
		default:
			return []Reply{reply("cannot get a request token right now")}
		}
	}
	e.metrics.RecordCommand("gettoken", "ok")
	return []Reply{
		privateReply("Please go to " + grant.AuthorizeURL),
		privateReply(grant.Instruction),
	}
}

func (e *Engine) handleCommitToken(ctx context.Context, msg Message, args map[string]string) []Reply {
	err := e.tokens.CommitToken(ctx, msg.User, args["verifier"])
	if err != nil {
		e.metrics.RecordCommand("committoken", apperrors.Code(err))
		switch apperrors.Code(err) {
		case "NOT_FOUND":
			return []Reply{reply("No pending request token. Run gettoken first.")}
		case "CONFIGURATION_ERROR":
			return []Reply{reply("Internal bot error, cannot load the tracker consumer key.")}
		default:
			return []Reply{reply("cannot complete the token exchange")}
		}
	}
	e.metrics.RecordCommand("committoken", "ok")
	return []Reply{privateReply("Token stored. The bot can now act on your behalf.")}
}
