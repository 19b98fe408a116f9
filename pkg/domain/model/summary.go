package model

import (
	"context"
	"time"

	"github.com/kohigashi/asakai/pkg/domain/types"
)

// StandupSummary is the append-only history record produced by a successful
// close with at least one response.
type StandupSummary struct {
	ID           string            `firestore:"id" json:"id"`
	Date         time.Time         `firestore:"date" json:"date"`
	Participants []User            `firestore:"participants" json:"participants"`
	Responses    []StandupResponse `firestore:"responses" json:"responses"`
	ParkingLot   []string          `firestore:"parking_lot,omitempty" json:"parkingLot,omitempty"`
}

// StorageInfo is the serialized form of a bound storage adapter, enough to
// reconstruct the adapter when the group is reloaded.
type StorageInfo struct {
	Kind     types.StorageKind `firestore:"kind" json:"type"`
	TargetID string            `firestore:"target_id,omitempty" json:"targetId,omitempty"`
}

// SummarySink archives closed-standup summaries outside the primary document
// store. The group holds a shared reference; adapters may be stateless.
type SummarySink interface {
	Kind() types.StorageKind
	Info() StorageInfo
	AppendSummary(ctx context.Context, summary *StandupSummary) error
}
