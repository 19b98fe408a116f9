package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/domain/interfaces"
	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
)

// Memory is an in-memory document store for development and tests. It keeps
// the same revision check-and-set contract as the Firestore backend.
type Memory struct {
	mu   sync.RWMutex
	docs map[types.TenantID]map[string]*model.Document
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		docs: make(map[types.TenantID]map[string]*model.Document),
	}
}

// copyDocument creates a deep copy so callers cannot mutate stored state
func copyDocument(d *model.Document) *model.Document {
	copied := *d
	copied.Users = append([]model.User(nil), d.Users...)
	copied.ActiveResponses = append([]model.StandupResponse(nil), d.ActiveResponses...)

	if d.Summaries != nil {
		copied.Summaries = make([]model.StandupSummary, len(d.Summaries))
		for i, s := range d.Summaries {
			cs := s
			cs.Participants = append([]model.User(nil), s.Participants...)
			cs.Responses = append([]model.StandupResponse(nil), s.Responses...)
			cs.ParkingLot = append([]string(nil), s.ParkingLot...)
			copied.Summaries[i] = cs
		}
	}
	return &copied
}

func (r *Memory) Get(ctx context.Context, id string, tenantID types.TenantID) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[tenantID][id]
	if !ok {
		return nil, nil
	}
	return copyDocument(doc), nil
}

func (r *Memory) Set(ctx context.Context, doc *model.Document) error {
	if err := doc.Validate(); err != nil {
		return goerr.Wrap(err, "invalid document")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[doc.TenantID]; !ok {
		r.docs[doc.TenantID] = make(map[string]*model.Document)
	}

	var storedRev int64
	if stored, ok := r.docs[doc.TenantID][doc.ID]; ok {
		storedRev = stored.Rev
	}
	if doc.Rev != storedRev {
		return goerr.Wrap(interfaces.ErrRevisionMismatch, "stale document",
			goerr.V("id", doc.ID),
			goerr.V("rev", doc.Rev),
			goerr.V("stored_rev", storedRev),
		)
	}

	saved := copyDocument(doc)
	saved.Rev = storedRev + 1
	saved.UpdatedAt = time.Now().UTC()
	r.docs[doc.TenantID][doc.ID] = saved
	return nil
}

func (r *Memory) Delete(ctx context.Context, id string, tenantID types.TenantID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.docs[tenantID], id)
	return nil
}

func (r *Memory) ListGroups(ctx context.Context, tenantID types.TenantID) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var groups []*model.Document
	for _, doc := range r.docs[tenantID] {
		if doc.Type == types.DocumentTypeGroup {
			groups = append(groups, copyDocument(doc))
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].UpdatedAt.After(groups[j].UpdatedAt)
	})
	return groups, nil
}

func (r *Memory) Close() error {
	return nil
}
