package discord

// Config holds Discord webhook configuration. Notifications are disabled
// unless both fields are set.
type Config struct {
	WebhookID    string `yaml:"webhook_id"`
	WebhookToken string `yaml:"webhook_token"`
	Username     string `yaml:"username"`
}

// Enabled reports whether a webhook is configured.
func (c Config) Enabled() bool {
	return c.WebhookID != "" && c.WebhookToken != ""
}
