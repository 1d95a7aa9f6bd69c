package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/tnicklin/actuator_loglevels/logger"
	"github.com/tnicklin/actuator_loglevels/models"
)

var _ Notifier = (*DefaultDiscord)(nil)

const (
	defaultUsername = "loglevel-automation"
	maxContentLen   = 2000
)

// webhookExecutor is satisfied by *discordgo.Session.
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DefaultDiscord posts transition summaries to a Discord webhook.
type DefaultDiscord struct {
	session  webhookExecutor
	id       string
	token    string
	username string
	logger   logger.Logger
}

type Params struct {
	Config Config
	Logger logger.Logger
}

func New(p Params) (*DefaultDiscord, error) {
	if !p.Config.Enabled() {
		return nil, errors.New("discord: webhook id and token are required")
	}

	// Webhook execution authenticates with the webhook token, not a bot token.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	return newWithSession(session, p), nil
}

func newWithSession(session webhookExecutor, p Params) *DefaultDiscord {
	log := p.Logger
	if log == nil {
		log = logger.NewNop()
	}
	username := p.Config.Username
	if username == "" {
		username = defaultUsername
	}
	return &DefaultDiscord{
		session:  session,
		id:       p.Config.WebhookID,
		token:    p.Config.WebhookToken,
		username: username,
		logger:   log,
	}
}

func (c *DefaultDiscord) Notify(ctx context.Context, rec models.TransitionRecord) error {
	content := FormatRecord(rec)
	_, err := c.session.WebhookExecute(c.id, c.token, false, &discordgo.WebhookParams{
		Content:  content,
		Username: c.username,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: execute webhook: %w", err)
	}
	c.logger.DebugW("posted transition summary", "id", rec.ID)
	return nil
}

// FormatRecord renders a record as a Discord message body.
func FormatRecord(rec models.TransitionRecord) string {
	var sb strings.Builder

	status := "applied"
	switch {
	case rec.NoOp:
		status = "no-op"
	case !rec.Succeeded():
		status = "failed"
	}
	fmt.Fprintf(&sb, "**Log levels %s** from `%s`", status, rec.Parameter)
	if rec.Trigger != "" {
		fmt.Fprintf(&sb, " (trigger `%s`)", rec.Trigger)
	}
	sb.WriteString("\n")

	if len(rec.Outcomes) > 0 {
		sb.WriteString("```\n")
		for _, o := range rec.Outcomes {
			switch {
			case o.Err != "":
				fmt.Fprintf(&sb, "%s -> %s  error: %s\n", o.Directive.Name, o.Directive.Level, o.Err)
			default:
				fmt.Fprintf(&sb, "%s -> %s  %d\n", o.Directive.Name, o.Directive.Level, o.StatusCode)
			}
		}
		sb.WriteString("```\n")
	}
	if rec.Error != "" {
		fmt.Fprintf(&sb, "error: %s\n", rec.Error)
	}

	return truncate(sb.String(), maxContentLen)
}

// truncate limits s to limit characters, cutting on a rune boundary.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}
