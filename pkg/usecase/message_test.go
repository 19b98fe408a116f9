package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/model/chat"
	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/repository/memory"
	"github.com/kohigashi/asakai/pkg/service/notion"
	"github.com/kohigashi/asakai/pkg/service/storage"
	"github.com/kohigashi/asakai/pkg/usecase"
)

const botUserID = "UBOT"

type fakeSlack struct {
	mu    sync.Mutex
	texts []string
	names map[string]string
}

func (f *fakeSlack) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	return "ts-1", nil
}

func (f *fakeSlack) PostText(ctx context.Context, channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeSlack) UpdateMessage(ctx context.Context, channelID, timestamp string, blocks []slack.Block, text string) error {
	return nil
}

func (f *fakeSlack) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	return nil
}

func (f *fakeSlack) GetUserName(ctx context.Context, userID string) (string, error) {
	if name, ok := f.names[userID]; ok {
		return name, nil
	}
	return userID, nil
}

func (f *fakeSlack) GetBotUserID(ctx context.Context) (string, error) {
	return botUserID, nil
}

func (f *fakeSlack) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

func appMention(channel, user, text string) *chat.Message {
	return chat.NewMessage(&slackevents.EventsAPIEvent{
		Type:   slackevents.CallbackEvent,
		TeamID: testTenant.String(),
		InnerEvent: slackevents.EventsAPIInnerEvent{
			Data: &slackevents.AppMentionEvent{
				Channel:   channel,
				User:      user,
				Text:      text,
				TimeStamp: "1700000000.000100",
			},
		},
	})
}

func newHandler(t *testing.T, fs *fakeSlack, fn *fakeNotion) *usecase.UseCases {
	t.Helper()
	opts := []usecase.Option{usecase.WithSlackService(fs)}
	if fn != nil {
		opts = append(opts, usecase.WithNotion(fn))
	}
	return usecase.New(memory.New(), opts...)
}

func TestHandleMessageMentions(t *testing.T) {
	ctx := context.Background()

	t.Run("bot mention does not join the group on add", func(t *testing.T) {
		fs := &fakeSlack{names: map[string]string{"U1": "Alice", "U222": "Bob"}}
		uc := newHandler(t, fs, nil)
		reg := uc.Standup.RegisterGroup(ctx, testConv, testTenant, storage.NewNone(), model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, reg.OK()).True()

		msg := appMention(testConv.String(), "U1", "<@UBOT> !add <@U222>")
		gt.NoError(t, uc.HandleMessage(ctx, msg)).Required()
		gt.Value(t, fs.lastText()).Equal("Added to the standup group: Bob")

		details := uc.Standup.GetGroupDetails(ctx, testConv, testTenant)
		gt.Array(t, details.Members).Length(2)
		for _, u := range details.Members {
			gt.Value(t, u.ID).NotEqual(types.UserID(botUserID))
		}
	})

	t.Run("remove with only the bot mentioned is an empty mention list", func(t *testing.T) {
		fs := &fakeSlack{names: map[string]string{"U1": "Alice"}}
		uc := newHandler(t, fs, nil)
		reg := uc.Standup.RegisterGroup(ctx, testConv, testTenant, storage.NewNone(), model.User{ID: "U1", Name: "Alice"})
		gt.Bool(t, reg.OK()).True()

		msg := appMention(testConv.String(), "U1", "<@UBOT> !remove")
		gt.NoError(t, uc.HandleMessage(ctx, msg)).Required()
		gt.Value(t, fs.lastText()).Equal("Please mention at least one user to remove.")
	})
}

func TestHandleMessageRegisterNotion(t *testing.T) {
	ctx := context.Background()

	t.Run("register notion without a page lists the shared pages", func(t *testing.T) {
		fs := &fakeSlack{names: map[string]string{"U1": "Alice"}}
		fn := &fakeNotion{pages: []*notion.Page{
			{ID: "page-1", Title: "Standup Log"},
			{ID: "page-2", Title: ""},
		}}
		uc := newHandler(t, fs, fn)

		msg := appMention(testConv.String(), "U1", "<@UBOT> !register notion")
		gt.NoError(t, uc.HandleMessage(ctx, msg)).Required()

		reply := fs.lastText()
		gt.Bool(t, strings.Contains(reply, "Standup Log (page-1)")).True()
		gt.Bool(t, strings.Contains(reply, "(untitled) (page-2)")).True()

		// No group was registered by the discovery reply
		details := uc.Standup.GetGroupDetails(ctx, testConv, testTenant)
		gt.Value(t, details.Kind).Equal(types.ResultNotRegistered)
	})

	t.Run("register notion with a page binds the adapter", func(t *testing.T) {
		fs := &fakeSlack{names: map[string]string{"U1": "Alice"}}
		fn := &fakeNotion{}
		uc := newHandler(t, fs, fn)

		msg := appMention(testConv.String(), "U1", "<@UBOT> !register notion page-1")
		gt.NoError(t, uc.HandleMessage(ctx, msg)).Required()

		details := uc.Standup.GetGroupDetails(ctx, testConv, testTenant)
		gt.Bool(t, details.OK()).True()
		gt.Value(t, details.StorageKind).Equal(types.StorageKindNotion)
	})
}
