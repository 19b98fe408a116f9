package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	slacksvc "github.com/kohigashi/asakai/pkg/service/slack"
)

// Slack holds CLI flags for the chat transport
type Slack struct {
	botToken      string
	signingSecret string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Sources:     cli.EnvVars("ASAKAI_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Sources:     cli.EnvVars("ASAKAI_SLACK_SIGNING_SECRET"),
			Destination: &x.signingSecret,
		},
	}
}

// SigningSecret returns the webhook signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// IsConfigured reports whether both the token and the signing secret are set
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.signingSecret != ""
}

// Configure builds the Slack service from the bot token
func (x *Slack) Configure() (slacksvc.Service, error) {
	if x.botToken == "" {
		return nil, goerr.New("slack-bot-token is required")
	}
	return slacksvc.New(x.botToken)
}
