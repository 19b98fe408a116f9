package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/kohigashi/asakai/pkg/service/summary"
)

// App holds the application-level configuration: an optional TOML file that
// overrides the summary digest formatting.
type App struct {
	configPath string
}

func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to a TOML file overriding summary formatting",
			Sources:     cli.EnvVars("ASAKAI_CONFIG"),
			Destination: &a.configPath,
		},
	}
}

type appConfig struct {
	Summary summary.Options `toml:"summary"`
}

// Configure loads the summary options, falling back to the defaults when no
// config file is given.
func (a *App) Configure() (summary.Options, error) {
	if a.configPath == "" {
		return summary.DefaultOptions(), nil
	}

	data, err := os.ReadFile(a.configPath)
	if err != nil {
		return summary.Options{}, goerr.Wrap(err, "failed to read config file", goerr.V("path", a.configPath))
	}

	var cfg appConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return summary.Options{}, goerr.Wrap(err, "failed to parse config file", goerr.V("path", a.configPath))
	}
	return cfg.Summary, nil
}
