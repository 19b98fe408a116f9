package model

import (
	"strings"
	"time"

	"github.com/kohigashi/asakai/pkg/domain/types"
)

// StandupResponse is one participant's report within a single active
// standup. At most one response per user is kept; a later submission from
// the same user replaces the earlier one.
type StandupResponse struct {
	UserID        types.UserID `firestore:"user_id" json:"userId"`
	CompletedWork string       `firestore:"completed_work" json:"completedWork"`
	PlannedWork   string       `firestore:"planned_work" json:"plannedWork"`
	ParkingLot    string       `firestore:"parking_lot,omitempty" json:"parkingLot,omitempty"`
	Timestamp     time.Time    `firestore:"timestamp" json:"timestamp"`
}

// Validate checks the response carries the required fields
func (r *StandupResponse) Validate() error {
	if err := r.UserID.Validate(); err != nil {
		return err
	}
	return nil
}

// Complete reports whether both required work fields are non-blank
func (r *StandupResponse) Complete() bool {
	return strings.TrimSpace(r.CompletedWork) != "" && strings.TrimSpace(r.PlannedWork) != ""
}
