package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kohigashi/asakai/pkg/domain/interfaces"
	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
)

const defaultCollection = "standups"

// Firestore is the production document store backend. Each document lives in
// one collection under a doc ID of "{tenantID}:{key}" so that a tenant's
// documents can also be filtered by the tenant_id field.
type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes the collection name, for test isolation
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

// New creates a Firestore-backed repository
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Firestore) collection() string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_" + defaultCollection
	}
	return defaultCollection
}

func (f *Firestore) docRef(id string, tenantID types.TenantID) *firestore.DocumentRef {
	return f.client.Collection(f.collection()).Doc(tenantID.String() + ":" + id)
}

func (f *Firestore) Get(ctx context.Context, id string, tenantID types.TenantID) (*model.Document, error) {
	docSnap, err := f.docRef(id, tenantID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("id", id), goerr.V("tenant_id", tenantID))
	}

	var doc model.Document
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", id))
	}
	return &doc, nil
}

// Set upserts the document, enforcing the revision check inside a
// transaction so concurrent writers against the same conversation cannot
// clobber each other.
func (f *Firestore) Set(ctx context.Context, doc *model.Document) error {
	if err := doc.Validate(); err != nil {
		return goerr.Wrap(err, "invalid document")
	}

	docRef := f.docRef(doc.ID, doc.TenantID)

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var storedRev int64
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to read document in transaction")
			}
		} else {
			rev, err := snap.DataAt("rev")
			if err != nil {
				return goerr.Wrap(err, "failed to read document revision")
			}
			v, ok := rev.(int64)
			if !ok {
				return goerr.New("document revision is not int64", goerr.V("rev", rev))
			}
			storedRev = v
		}

		if doc.Rev != storedRev {
			return goerr.Wrap(interfaces.ErrRevisionMismatch, "stale document",
				goerr.V("id", doc.ID),
				goerr.V("rev", doc.Rev),
				goerr.V("stored_rev", storedRev),
			)
		}

		saved := *doc
		saved.Rev = storedRev + 1
		saved.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, &saved)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to set document", goerr.V("id", doc.ID))
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, id string, tenantID types.TenantID) error {
	if _, err := f.docRef(id, tenantID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete document", goerr.V("id", id), goerr.V("tenant_id", tenantID))
	}
	return nil
}

func (f *Firestore) ListGroups(ctx context.Context, tenantID types.TenantID) ([]*model.Document, error) {
	iter := f.client.Collection(f.collection()).
		Where("tenant_id", "==", tenantID.String()).
		Where("type", "==", types.DocumentTypeGroup.String()).
		OrderBy("updated_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var groups []*model.Document
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate group documents", goerr.V("tenant_id", tenantID))
		}

		var doc model.Document
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode group document", goerr.V("doc_id", docSnap.Ref.ID))
		}
		groups = append(groups, &doc)
	}
	return groups, nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
