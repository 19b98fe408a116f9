package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/kohigashi/asakai/pkg/domain/interfaces"
	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/repository/memory"
	"github.com/kohigashi/asakai/pkg/service/notion"
	"github.com/kohigashi/asakai/pkg/service/storage"
	"github.com/kohigashi/asakai/pkg/usecase"
)

const (
	testConv   = types.ConversationID("C1")
	testTenant = types.TenantID("T1")
)

type fakeNotion struct {
	mu       sync.Mutex
	appends  int
	failWith error
	pageID   string
	heading  string
	body     string
	pages    []*notion.Page
}

func (f *fakeNotion) ListPages(ctx context.Context) ([]*notion.Page, error) {
	return f.pages, nil
}

func (f *fakeNotion) AppendText(ctx context.Context, pageID, heading, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.appends++
	f.pageID = pageID
	f.heading = heading
	f.body = body
	return nil
}

// conflictOnSet wraps a repository and fails the next n group-document sets
// with a revision mismatch, exercising the retry path.
type conflictOnSet struct {
	interfaces.Repository
	mu        sync.Mutex
	remaining int
}

func (r *conflictOnSet) arm(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = n
}

func (r *conflictOnSet) Set(ctx context.Context, doc *model.Document) error {
	r.mu.Lock()
	if r.remaining > 0 && doc.Type == types.DocumentTypeGroup {
		r.remaining--
		r.mu.Unlock()
		return interfaces.ErrRevisionMismatch
	}
	r.mu.Unlock()
	return r.Repository.Set(ctx, doc)
}

func newStandup(t *testing.T, fn *fakeNotion) (*usecase.StandupUseCase, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	uc := usecase.New(repo, usecase.WithNotion(fn))
	return uc.Standup, repo
}

func register(t *testing.T, uc *usecase.StandupUseCase, fn *fakeNotion, creator model.User) {
	t.Helper()
	result := uc.RegisterGroup(context.Background(), testConv, testTenant, storage.NewNotion(fn, "page-1"), creator)
	gt.Bool(t, result.OK()).True()
}

func noopSend(ctx context.Context, activityID string, respondedNames []string) error {
	return nil
}

func response(userID types.UserID, completed, planned, parking string) model.StandupResponse {
	return model.StandupResponse{
		UserID:        userID,
		CompletedWork: completed,
		PlannedWork:   planned,
		ParkingLot:    parking,
		Timestamp:     time.Now(),
	}
}

func TestRegisterGroup(t *testing.T) {
	t.Run("second registration fails", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		ctx := context.Background()
		creator := model.User{ID: "U1", Name: "Alice"}

		first := uc.RegisterGroup(ctx, testConv, testTenant, storage.NewNone(), creator)
		gt.Bool(t, first.OK()).True()
		gt.Value(t, first.Kind).Equal(types.ResultOK)

		second := uc.RegisterGroup(ctx, testConv, testTenant, storage.NewNone(), creator)
		gt.Bool(t, second.OK()).False()
		gt.Value(t, second.Kind).Equal(types.ResultAlreadyRegistered)
	})

	t.Run("registrations in different conversations are independent", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		ctx := context.Background()
		creator := model.User{ID: "U1", Name: "Alice"}

		gt.Bool(t, uc.RegisterGroup(ctx, "C1", testTenant, storage.NewNone(), creator).OK()).True()
		gt.Bool(t, uc.RegisterGroup(ctx, "C2", testTenant, storage.NewNone(), creator).OK()).True()
	})
}

func TestAddRemoveUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("empty mention list fails", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})

		result := uc.AddUsers(ctx, testConv, testTenant, nil)
		gt.Value(t, result.Kind).Equal(types.ResultEmptyMentions)

		result = uc.RemoveUsers(ctx, testConv, testTenant, nil)
		gt.Value(t, result.Kind).Equal(types.ResultEmptyMentions)
	})

	t.Run("partial add reports only inserted names", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})

		result := uc.AddUsers(ctx, testConv, testTenant, []model.User{
			{ID: "U1", Name: "Alice"},
			{ID: "U2", Name: "Bob"},
		})
		gt.Bool(t, result.OK()).True()
		gt.Bool(t, strings.Contains(result.Message, "Bob")).True()
		gt.Bool(t, strings.Contains(result.Message, "Alice")).False()
	})

	t.Run("adding only existing members fails", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})

		result := uc.AddUsers(ctx, testConv, testTenant, []model.User{{ID: "U1", Name: "Alice"}})
		gt.Value(t, result.Kind).Equal(types.ResultNoChange)
	})

	t.Run("removing absent users fails", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})

		result := uc.RemoveUsers(ctx, testConv, testTenant, []types.UserID{"U9"})
		gt.Value(t, result.Kind).Equal(types.ResultNoChange)
	})

	t.Run("remove reports removed names", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.AddUsers(ctx, testConv, testTenant, []model.User{{ID: "U2", Name: "Bob"}}).OK()).True()

		result := uc.RemoveUsers(ctx, testConv, testTenant, []types.UserID{"U2"})
		gt.Bool(t, result.OK()).True()
		gt.Bool(t, strings.Contains(result.Message, "Bob")).True()

		details := uc.GetGroupDetails(ctx, testConv, testTenant)
		gt.Array(t, details.Members).Length(1)
	})

	t.Run("unregistered conversation fails", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)

		result := uc.AddUsers(ctx, testConv, testTenant, []model.User{{ID: "U2", Name: "Bob"}})
		gt.Value(t, result.Kind).Equal(types.ResultNotRegistered)
	})
}

func TestStartStandup(t *testing.T) {
	ctx := context.Background()

	t.Run("start and double start", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})

		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()

		again := uc.StartStandup(ctx, testConv, testTenant, "ts-2")
		gt.Value(t, again.Kind).Equal(types.ResultAlreadyActive)
	})

	t.Run("empty group cannot start", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.RemoveUsers(ctx, testConv, testTenant, []types.UserID{"U1"}).OK()).True()

		result := uc.StartStandup(ctx, testConv, testTenant, "ts-1")
		gt.Value(t, result.Kind).Equal(types.ResultEmptyGroup)
	})

	t.Run("unregistered conversation fails", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)

		result := uc.StartStandup(ctx, testConv, testTenant, "ts-1")
		gt.Value(t, result.Kind).Equal(types.ResultNotRegistered)
	})
}

func TestSubmitResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("second submission replaces the first", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, repo := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()

		gt.Bool(t, uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "draft", "plan", ""), noopSend).OK()).True()
		gt.Bool(t, uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "final", "plan", ""), noopSend).OK()).True()

		doc, err := repo.Get(ctx, model.GroupDocKey(testConv), testTenant)
		gt.NoError(t, err).Required()
		gt.Array(t, doc.ActiveResponses).Length(1)
		gt.Value(t, doc.ActiveResponses[0].CompletedWork).Equal("final")
	})

	t.Run("incomplete response rejected", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()

		result := uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "done", "  ", ""), noopSend)
		gt.Value(t, result.Kind).Equal(types.ResultInvalidResponse)
	})

	t.Run("inactive standup rejected", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})

		result := uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "done", "plan", ""), noopSend)
		gt.Value(t, result.Kind).Equal(types.ResultNotActive)
	})

	t.Run("missing send callback rejected", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()

		result := uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "done", "plan", ""), nil)
		gt.Value(t, result.Kind).Equal(types.ResultInvalidResponse)
	})

	t.Run("card re-render gets responders so far", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.AddUsers(ctx, testConv, testTenant, []model.User{{ID: "U2", Name: "Bob"}}).OK()).True()
		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()

		var gotActivity string
		var gotNames []string
		send := func(ctx context.Context, activityID string, respondedNames []string) error {
			gotActivity = activityID
			gotNames = respondedNames
			return nil
		}

		gt.Bool(t, uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "done", "plan", ""), send).OK()).True()
		gt.Value(t, gotActivity).Equal("ts-1")
		gt.Array(t, gotNames).Equal([]string{"Alice"})

		gt.Bool(t, uc.SubmitResponse(ctx, testConv, testTenant, response("U2", "done", "plan", ""), send).OK()).True()
		gt.Array(t, gotNames).Equal([]string{"Alice", "Bob"})
	})

	t.Run("re-render failure does not undo the response", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, repo := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()

		send := func(ctx context.Context, activityID string, respondedNames []string) error {
			return goerr.New("render failed")
		}
		result := uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "done", "plan", ""), send)
		gt.Bool(t, result.OK()).True()

		doc, err := repo.Get(ctx, model.GroupDocKey(testConv), testTenant)
		gt.NoError(t, err).Required()
		gt.Array(t, doc.ActiveResponses).Length(1)
	})
}

func TestCloseStandup(t *testing.T) {
	ctx := context.Background()

	t.Run("full cycle archives once and summarizes everyone", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.AddUsers(ctx, testConv, testTenant, []model.User{{ID: "U2", Name: "Bob"}}).OK()).True()
		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()
		gt.Bool(t, uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "task1\ntask2", "plan1", "discuss X"), noopSend).OK()).True()
		gt.Bool(t, uc.SubmitResponse(ctx, testConv, testTenant, response("U2", "fixups", "plan2", ""), noopSend).OK()).True()

		result := uc.CloseStandup(ctx, testConv, testTenant, true)
		gt.Bool(t, result.OK()).True()
		gt.Value(t, result.Summary).NotEqual("")
		gt.Bool(t, strings.Contains(result.Summary, "Alice")).True()
		gt.Bool(t, strings.Contains(result.Summary, "Bob")).True()
		gt.Number(t, fn.appends).Equal(1)
		gt.Value(t, fn.pageID).Equal("page-1")

		history, err := uc.GetStandupHistory(ctx, testConv, testTenant)
		gt.NoError(t, err).Required()
		gt.Array(t, history).Length(1)
		gt.Array(t, history[0].Responses).Length(2)

		details := uc.GetGroupDetails(ctx, testConv, testTenant)
		gt.Bool(t, details.IsActive).False()
	})

	t.Run("zero responses is an error but still closes", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()

		result := uc.CloseStandup(ctx, testConv, testTenant, true)
		gt.Value(t, result.Kind).Equal(types.ResultNoResponses)
		gt.Value(t, result.Message).Equal("No responses were recorded for this standup.")
		gt.Number(t, fn.appends).Equal(0)

		details := uc.GetGroupDetails(ctx, testConv, testTenant)
		gt.Bool(t, details.IsActive).False()
	})

	t.Run("revision conflict during close archives once", func(t *testing.T) {
		fn := &fakeNotion{}
		repo := &conflictOnSet{Repository: memory.New()}
		uc := usecase.New(repo, usecase.WithNotion(fn)).Standup
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()
		gt.Bool(t, uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "done", "plan", ""), noopSend).OK()).True()

		repo.arm(1)
		result := uc.CloseStandup(ctx, testConv, testTenant, true)
		gt.Bool(t, result.OK()).True()
		gt.Number(t, fn.appends).Equal(1)

		history, err := uc.GetStandupHistory(ctx, testConv, testTenant)
		gt.NoError(t, err).Required()
		gt.Array(t, history).Length(1)
	})

	t.Run("archive failure still reports success", func(t *testing.T) {
		fn := &fakeNotion{failWith: goerr.New("notion is down")}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()
		gt.Bool(t, uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "done", "plan", ""), noopSend).OK()).True()

		result := uc.CloseStandup(ctx, testConv, testTenant, true)
		gt.Bool(t, result.OK()).True()
		gt.Value(t, result.Summary).NotEqual("")
		gt.Bool(t, strings.Contains(result.Message, "could not be archived")).True()
	})

	t.Run("close without summary discards silently", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, uc.StartStandup(ctx, testConv, testTenant, "ts-1").OK()).True()
		gt.Bool(t, uc.SubmitResponse(ctx, testConv, testTenant, response("U1", "done", "plan", ""), noopSend).OK()).True()

		result := uc.CloseStandup(ctx, testConv, testTenant, false)
		gt.Bool(t, result.OK()).True()
		gt.Value(t, result.Summary).Equal("")
		gt.Number(t, fn.appends).Equal(0)

		restarted := uc.StartStandup(ctx, testConv, testTenant, "ts-2")
		gt.Bool(t, restarted.OK()).True()
	})

	t.Run("closing an idle group without summary is a no-op success", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		register(t, uc, fn, model.User{ID: "U1", Name: "Alice"})

		result := uc.CloseStandup(ctx, testConv, testTenant, false)
		gt.Bool(t, result.OK()).True()
	})

	t.Run("unregistered conversation fails", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)

		result := uc.CloseStandup(ctx, testConv, testTenant, true)
		gt.Value(t, result.Kind).Equal(types.ResultNotRegistered)
	})
}

func TestGroupAdministration(t *testing.T) {
	ctx := context.Background()

	t.Run("list and deregister", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		creator := model.User{ID: "U1", Name: "Alice"}
		gt.Bool(t, uc.RegisterGroup(ctx, "C1", testTenant, storage.NewNone(), creator).OK()).True()
		gt.Bool(t, uc.RegisterGroup(ctx, "C2", testTenant, storage.NewNone(), creator).OK()).True()

		groups, err := uc.ListGroups(ctx, testTenant)
		gt.NoError(t, err).Required()
		gt.Array(t, groups).Length(2)

		gt.NoError(t, uc.DeregisterGroup(ctx, "C1", testTenant))

		groups, err = uc.ListGroups(ctx, testTenant)
		gt.NoError(t, err).Required()
		gt.Array(t, groups).Length(1)
		gt.Value(t, groups[0].ConversationID()).Equal(types.ConversationID("C2"))

		details := uc.GetGroupDetails(ctx, "C1", testTenant)
		gt.Value(t, details.Kind).Equal(types.ResultNotRegistered)
	})

	t.Run("deregistering an unknown conversation fails", func(t *testing.T) {
		fn := &fakeNotion{}
		uc, _ := newStandup(t, fn)
		gt.Error(t, uc.DeregisterGroup(ctx, "C9", testTenant))
	})
}

func TestGroupRoundTrip(t *testing.T) {
	ctx := context.Background()
	fn := &fakeNotion{}
	repo := memory.New()
	store := usecase.NewGroupStore(repo, storage.Deps{Notion: fn})
	manager := usecase.NewGroupManager(store)

	created, err := manager.CreateGroup(ctx, testConv, testTenant, storage.NewNotion(fn, "page-1"), model.User{ID: "U1", Name: "Alice"})
	gt.NoError(t, err).Required()
	gt.Bool(t, created.AddUser(model.User{ID: "U2", Name: "Bob"})).True()
	gt.Bool(t, created.StartStandup("ts-1")).True()
	gt.Bool(t, created.AddResponse(response("U1", "done", "plan", "topic"))).True()
	gt.NoError(t, store.SaveGroup(ctx, created, 1)).Required()

	ld, err := store.LoadGroup(ctx, testConv, testTenant)
	gt.NoError(t, err).Required()

	loaded := ld.Group
	gt.Array(t, loaded.Users()).Equal(created.Users())
	gt.Bool(t, loaded.IsActive()).Equal(created.IsActive())
	gt.Array(t, loaded.Responses()).Equal(created.Responses())
	gt.Value(t, loaded.ActivityID()).Equal(created.ActivityID())
	gt.Value(t, loaded.Storage().Kind()).Equal(types.StorageKindNotion)
	gt.Value(t, loaded.Storage().Info().TargetID).Equal("page-1")
}
