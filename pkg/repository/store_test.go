package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/kohigashi/asakai/pkg/domain/interfaces"
	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/repository/firestore"
	"github.com/kohigashi/asakai/pkg/repository/memory"
)

func groupDoc(conv types.ConversationID, tenant types.TenantID) *model.Document {
	return &model.Document{
		ID:       model.GroupDocKey(conv),
		TenantID: tenant,
		Type:     types.DocumentTypeGroup,
		Users: []model.User{
			{ID: "U1", Name: "Alice"},
			{ID: "U2", Name: "Bob"},
		},
		Storage: model.StorageInfo{Kind: types.StorageKindNone},
	}
}

func runRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const tenant = types.TenantID("T-test")

	t.Run("Get returns nil for absent document", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		doc, err := repo.Get(ctx, "no-such-doc", tenant)
		gt.NoError(t, err).Required()
		gt.Value(t, doc).Nil()
	})

	t.Run("Set and Get round-trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		doc := groupDoc("C100", tenant)
		doc.IsActive = true
		doc.ActiveActivityID = "1700000000.000100"
		doc.ActiveResponses = []model.StandupResponse{
			{UserID: "U1", CompletedWork: "shipped", PlannedWork: "review", Timestamp: time.Now().UTC()},
		}

		gt.NoError(t, repo.Set(ctx, doc)).Required()

		loaded, err := repo.Get(ctx, doc.ID, tenant)
		gt.NoError(t, err).Required()
		gt.Value(t, loaded).NotNil().Required()

		gt.Value(t, loaded.Type).Equal(types.DocumentTypeGroup)
		gt.Value(t, loaded.IsActive).Equal(true)
		gt.Value(t, loaded.ActiveActivityID).Equal("1700000000.000100")
		gt.Array(t, loaded.Users).Length(2)
		gt.Array(t, loaded.ActiveResponses).Length(1)
		gt.Value(t, loaded.ActiveResponses[0].CompletedWork).Equal("shipped")
		gt.Value(t, loaded.Rev).Equal(int64(1))
		gt.Bool(t, loaded.UpdatedAt.IsZero()).False()
	})

	t.Run("Set bumps revision on each write", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		doc := groupDoc("C101", tenant)
		gt.NoError(t, repo.Set(ctx, doc)).Required()

		loaded, err := repo.Get(ctx, doc.ID, tenant)
		gt.NoError(t, err).Required()
		gt.Value(t, loaded.Rev).Equal(int64(1))

		loaded.IsActive = true
		gt.NoError(t, repo.Set(ctx, loaded)).Required()

		again, err := repo.Get(ctx, doc.ID, tenant)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Rev).Equal(int64(2))
		gt.Value(t, again.IsActive).Equal(true)
	})

	t.Run("Set rejects stale revision", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		doc := groupDoc("C102", tenant)
		gt.NoError(t, repo.Set(ctx, doc)).Required()

		first, err := repo.Get(ctx, doc.ID, tenant)
		gt.NoError(t, err).Required()
		second, err := repo.Get(ctx, doc.ID, tenant)
		gt.NoError(t, err).Required()

		first.IsActive = true
		gt.NoError(t, repo.Set(ctx, first)).Required()

		// Second writer still holds the old revision and must lose
		second.Users = nil
		err = repo.Set(ctx, second)
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, interfaces.ErrRevisionMismatch)).True()

		// The first writer's state survived
		loaded, err := repo.Get(ctx, doc.ID, tenant)
		gt.NoError(t, err).Required()
		gt.Value(t, loaded.IsActive).Equal(true)
		gt.Array(t, loaded.Users).Length(2)
	})

	t.Run("Set validates document", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Set(ctx, &model.Document{ID: "x", TenantID: tenant, Type: "bogus"})
		gt.Value(t, err).NotNil()
	})

	t.Run("Delete removes document", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		doc := groupDoc("C103", tenant)
		gt.NoError(t, repo.Set(ctx, doc)).Required()
		gt.NoError(t, repo.Delete(ctx, doc.ID, tenant)).Required()

		loaded, err := repo.Get(ctx, doc.ID, tenant)
		gt.NoError(t, err).Required()
		gt.Value(t, loaded).Nil()
	})

	t.Run("group and history documents are siblings", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conv := types.ConversationID("C104")
		gt.NoError(t, repo.Set(ctx, groupDoc(conv, tenant))).Required()

		hist := model.NewHistoryDocument(conv, tenant)
		hist.Summaries = []model.StandupSummary{{ID: "s1", Date: time.Now().UTC()}}
		gt.NoError(t, repo.Set(ctx, hist)).Required()

		group, err := repo.Get(ctx, model.GroupDocKey(conv), tenant)
		gt.NoError(t, err).Required()
		gt.Value(t, group).NotNil().Required()
		gt.Value(t, group.Type).Equal(types.DocumentTypeGroup)

		history, err := repo.Get(ctx, model.HistoryDocKey(conv), tenant)
		gt.NoError(t, err).Required()
		gt.Value(t, history).NotNil().Required()
		gt.Value(t, history.Type).Equal(types.DocumentTypeHistory)
		gt.Array(t, history.Summaries).Length(1)
	})

	t.Run("ListGroups excludes history documents", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		listTenant := types.TenantID(fmt.Sprintf("T-list-%d", time.Now().UnixNano()))
		gt.NoError(t, repo.Set(ctx, groupDoc("C200", listTenant))).Required()
		gt.NoError(t, repo.Set(ctx, groupDoc("C201", listTenant))).Required()
		gt.NoError(t, repo.Set(ctx, model.NewHistoryDocument("C200", listTenant))).Required()

		groups, err := repo.ListGroups(ctx, listTenant)
		gt.NoError(t, err).Required()
		gt.Array(t, groups).Length(2)
		for _, g := range groups {
			gt.Value(t, g.Type).Equal(types.DocumentTypeGroup)
		}
	})
}

func TestRepository_Memory(t *testing.T) {
	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT is not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE")

	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, databaseID,
			firestore.WithCollectionPrefix(fmt.Sprintf("test_%d", time.Now().UnixNano())),
		)
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			if err := repo.Close(); err != nil {
				t.Logf("failed to close firestore client: %v", err)
			}
		})
		return repo
	})
}

func TestMemory_CopyIsolation(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	doc := groupDoc("C300", "T-iso")
	gt.NoError(t, repo.Set(ctx, doc)).Required()

	loaded, err := repo.Get(ctx, doc.ID, "T-iso")
	gt.NoError(t, err).Required()
	loaded.Users[0].Name = "Mallory"

	again, err := repo.Get(ctx, doc.ID, "T-iso")
	gt.NoError(t, err).Required()
	gt.Value(t, again.Users[0].Name).Equal("Alice")
}
