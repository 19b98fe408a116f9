package storage

import (
	"context"
	"encoding/json"

	gcs "cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
)

// GCSClient is the slice of the Cloud Storage API the adapter needs
type GCSClient interface {
	Bucket(name string) *gcs.BucketHandle
}

// GCS archives summaries as timestamped JSON objects in a bucket
type GCS struct {
	client GCSClient
	bucket string
}

var _ Adapter = &GCS{}

// NewGCS creates an adapter writing into the given bucket
func NewGCS(client GCSClient, bucket string) *GCS {
	return &GCS{
		client: client,
		bucket: bucket,
	}
}

func (g *GCS) Kind() types.StorageKind {
	return types.StorageKindGCS
}

func (g *GCS) Info() model.StorageInfo {
	return model.StorageInfo{
		Kind:     types.StorageKindGCS,
		TargetID: g.bucket,
	}
}

func (g *GCS) AppendSummary(ctx context.Context, s *model.StandupSummary) error {
	name := "standups/" + s.Date.Format("2006/01/02") + "/" + s.ID + ".json"

	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(s); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to encode summary for gcs",
			goerr.V("bucket", g.bucket), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to write summary object",
			goerr.V("bucket", g.bucket), goerr.V("object", name))
	}
	return nil
}

func (g *GCS) Describe() string {
	return "gcs (bucket " + g.bucket + ")"
}
