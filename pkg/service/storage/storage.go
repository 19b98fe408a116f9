package storage

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/service/notion"
)

// Adapter is a pluggable sink archiving closed-standup summaries outside the
// primary document store. Adapters are stateless with respect to the group
// and may be shared.
type Adapter interface {
	model.SummarySink

	// Describe returns a short human-readable label for group details
	Describe() string
}

// Deps carries the external services adapters may need. A nil service
// disables the adapter kinds that depend on it.
type Deps struct {
	Notion notion.Service
	GCS    GCSClient
}

// Restore reconstructs an adapter from its persisted StorageInfo. The kind
// set is closed: every kind restores, and an unknown kind is a data error
// carrying the kind in its values, not an unimplemented branch.
func Restore(info model.StorageInfo, deps Deps) (Adapter, error) {
	switch info.Kind {
	case types.StorageKindNone, "":
		return NewNone(), nil

	case types.StorageKindNotion:
		if deps.Notion == nil {
			return nil, goerr.New("notion storage is configured on the group but the Notion service is not available",
				goerr.V("target_id", info.TargetID))
		}
		return NewNotion(deps.Notion, info.TargetID), nil

	case types.StorageKindGCS:
		if deps.GCS == nil {
			return nil, goerr.New("gcs storage is configured on the group but the GCS client is not available",
				goerr.V("target_id", info.TargetID))
		}
		return NewGCS(deps.GCS, info.TargetID), nil

	default:
		return nil, goerr.New("unknown storage kind in persisted group", goerr.V("kind", info.Kind))
	}
}
