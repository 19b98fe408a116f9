package config

import (
	"context"

	gcs "cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kohigashi/asakai/pkg/service/storage"
)

// CloudStorage holds configuration for the Cloud Storage archive backend
type CloudStorage struct {
	enabled bool
}

func (s *CloudStorage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "gcs-enabled",
			Usage:       "Enable the Cloud Storage summary archive backend",
			Category:    "Storage",
			Sources:     cli.EnvVars("ASAKAI_GCS_ENABLED"),
			Destination: &s.enabled,
		},
	}
}

// Configure creates the Cloud Storage client when enabled. The returned
// closer releases the client; both are nil when the backend is disabled.
func (s *CloudStorage) Configure(ctx context.Context) (storage.GCSClient, func(), error) {
	if !s.enabled {
		return nil, nil, nil
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create cloud storage client")
	}
	closer := func() {
		_ = client.Close()
	}
	return client, closer, nil
}
