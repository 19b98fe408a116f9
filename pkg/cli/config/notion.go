package config

import (
	"github.com/urfave/cli/v3"

	"github.com/kohigashi/asakai/pkg/service/notion"
)

// Notion holds configuration for the Notion storage integration
type Notion struct {
	token string
}

func (n *Notion) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "notion-api-token",
			Usage:       "Notion API token for summary archiving",
			Category:    "Storage",
			Sources:     cli.EnvVars("ASAKAI_NOTION_API_TOKEN"),
			Destination: &n.token,
		},
	}
}

// Configure creates the Notion service. Returns nil when no token is
// configured; the notion storage kind is then unavailable.
func (n *Notion) Configure() (notion.Service, error) {
	if n.token == "" {
		return nil, nil
	}
	return notion.New(n.token)
}
