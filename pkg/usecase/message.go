package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/model/chat"
	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/service/intent"
	slacksvc "github.com/kohigashi/asakai/pkg/service/slack"
	"github.com/kohigashi/asakai/pkg/service/storage"
	"github.com/kohigashi/asakai/pkg/utils/errutil"
	"github.com/kohigashi/asakai/pkg/utils/logging"
)

const purposeReply = "I run your team's standups: register a group with !register, " +
	"add members with !add @user, then !start standup to collect updates and " +
	"!close standup to post the summary."

const helpReply = "I didn't catch that. Commands: !register [notion|gcs <target>], " +
	"!add @user, !remove @user, !group details, !start standup, !restart standup, !close standup."

// HandleMessage routes one inbound chat message. Exact "!" commands parse
// locally; anything else goes through the intent classifier when one is
// configured and is otherwise ignored. Each intent maps onto one standup
// operation and every outcome is answered in the conversation.
func (uc *UseCases) HandleMessage(ctx context.Context, msg *chat.Message) error {
	if uc.slackSvc == nil {
		return goerr.New("slack service is not configured")
	}

	text := msg.PlainText()
	cmd, isCommand := intent.ParseCommand(text)

	resolved := cmd.Intent
	if !isCommand {
		if uc.classifier == nil || strings.TrimSpace(text) == "" {
			return nil
		}
		classified, err := uc.classifier.Classify(ctx, text)
		if err != nil {
			errutil.Handle(ctx, err, "intent classification failed")
			return nil
		}
		resolved = classified
	}

	logging.From(ctx).Debug("routing message",
		"conversation_id", msg.ConversationID(),
		"intent", resolved,
		"exact_command", isCommand,
	)

	conv := msg.ConversationID()
	tenant := msg.TenantID()

	switch resolved {
	case types.IntentRegister:
		return uc.handleRegister(ctx, msg, cmd.Args)

	case types.IntentAddUsers:
		users := uc.resolveUsers(ctx, uc.memberMentions(ctx, msg))
		return uc.reply(ctx, conv, uc.Standup.AddUsers(ctx, conv, tenant, users).Message)

	case types.IntentRemoveUsers:
		return uc.reply(ctx, conv, uc.Standup.RemoveUsers(ctx, conv, tenant, uc.memberMentions(ctx, msg)).Message)

	case types.IntentGroupDetails:
		return uc.reply(ctx, conv, uc.Standup.GetGroupDetails(ctx, conv, tenant).Message)

	case types.IntentStartStandup:
		return uc.handleStart(ctx, conv, tenant)

	case types.IntentRestartStandup:
		if result := uc.Standup.CloseStandup(ctx, conv, tenant, false); !result.OK() {
			return uc.reply(ctx, conv, result.Message)
		}
		return uc.handleStart(ctx, conv, tenant)

	case types.IntentCloseStandup:
		return uc.handleClose(ctx, conv, tenant)

	case types.IntentPurpose:
		return uc.reply(ctx, conv, purposeReply)

	default:
		if isCommand {
			return uc.reply(ctx, conv, helpReply)
		}
		return nil
	}
}

func (uc *UseCases) handleRegister(ctx context.Context, msg *chat.Message, args []string) error {
	conv := msg.ConversationID()

	if len(args) == 1 && types.StorageKind(strings.ToLower(args[0])) == types.StorageKindNotion && uc.notionSvc != nil {
		return uc.replyNotionPages(ctx, conv)
	}

	adapter, err := uc.buildAdapter(args)
	if err != nil {
		return uc.reply(ctx, conv, "Could not set up storage: "+err.Error())
	}

	name, err := uc.slackSvc.GetUserName(ctx, msg.UserID().String())
	if err != nil {
		errutil.Handle(ctx, err, "failed to resolve creator name")
		name = msg.UserID().String()
	}
	creator := model.User{ID: msg.UserID(), Name: name}

	result := uc.Standup.RegisterGroup(ctx, conv, msg.TenantID(), adapter, creator)
	return uc.reply(ctx, conv, result.Message)
}

// replyNotionPages answers "!register notion" without a page ID by listing
// the pages shared with the integration, so the user can pick one.
func (uc *UseCases) replyNotionPages(ctx context.Context, conv types.ConversationID) error {
	pages, err := uc.notionSvc.ListPages(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "failed to list notion pages")
		return uc.reply(ctx, conv, "Could not list Notion pages: "+err.Error())
	}
	if len(pages) == 0 {
		return uc.reply(ctx, conv, "No Notion pages are shared with this bot. Share a page with the integration first.")
	}

	var sb strings.Builder
	sb.WriteString("Pick a page and register with !register notion <pageID>:")
	for _, p := range pages {
		title := p.Title
		if title == "" {
			title = "(untitled)"
		}
		sb.WriteString("\n- " + title + " (" + p.ID + ")")
	}
	return uc.reply(ctx, conv, sb.String())
}

// buildAdapter maps register arguments onto a storage adapter: no arguments
// means no archiving, otherwise the first argument names the kind and the
// second its target.
func (uc *UseCases) buildAdapter(args []string) (storage.Adapter, error) {
	if len(args) == 0 {
		return storage.NewNone(), nil
	}

	kind := types.StorageKind(strings.ToLower(args[0]))
	target := ""
	if len(args) > 1 {
		target = args[1]
	}

	switch kind {
	case types.StorageKindNone:
		return storage.NewNone(), nil
	case types.StorageKindNotion:
		if uc.notionSvc == nil {
			return nil, goerr.New("notion is not configured on this bot")
		}
		if target == "" {
			return nil, goerr.Wrap(ErrMissingTarget, "notion storage needs a page ID")
		}
		return storage.NewNotion(uc.notionSvc, target), nil
	case types.StorageKindGCS:
		if uc.gcsClient == nil {
			return nil, goerr.New("cloud storage is not configured on this bot")
		}
		if target == "" {
			return nil, goerr.Wrap(ErrMissingTarget, "gcs storage needs a bucket name")
		}
		return storage.NewGCS(uc.gcsClient, target), nil
	default:
		return nil, goerr.New("unknown storage kind", goerr.V("kind", kind))
	}
}

// handleStart posts the interactive card first so its timestamp can serve as
// the activity handle, then starts the standup with that handle.
func (uc *UseCases) handleStart(ctx context.Context, conv types.ConversationID, tenant types.TenantID) error {
	blocks := slacksvc.StandupCardBlocks(conv.String(), nil)
	ts, err := uc.slackSvc.PostMessage(ctx, conv.String(), blocks, "Standup started")
	if err != nil {
		return goerr.Wrap(err, "failed to post standup card")
	}

	result := uc.Standup.StartStandup(ctx, conv, tenant, ts)
	if !result.OK() {
		return uc.reply(ctx, conv, result.Message)
	}
	return nil
}

func (uc *UseCases) handleClose(ctx context.Context, conv types.ConversationID, tenant types.TenantID) error {
	result := uc.Standup.CloseStandup(ctx, conv, tenant, true)
	if !result.OK() {
		return uc.reply(ctx, conv, result.Message)
	}

	if err := uc.reply(ctx, conv, result.Summary); err != nil {
		return err
	}
	if note := strings.TrimSpace(strings.TrimPrefix(result.Message, "Standup closed.")); note != "" {
		return uc.reply(ctx, conv, note)
	}
	return nil
}

// OpenResponseModal opens the response modal in reaction to the card button
func (uc *UseCases) OpenResponseModal(ctx context.Context, triggerID string, conv types.ConversationID) error {
	if uc.slackSvc == nil {
		return goerr.New("slack service is not configured")
	}
	if err := uc.slackSvc.OpenView(ctx, triggerID, slacksvc.ResponseModalView(conv.String())); err != nil {
		return goerr.Wrap(err, "failed to open response modal", goerr.V("conversation_id", conv))
	}
	return nil
}

// SubmitStandupResponse records a response and live-updates the card
func (uc *UseCases) SubmitStandupResponse(ctx context.Context, conv types.ConversationID, tenant types.TenantID, response model.StandupResponse) *model.CommandResult {
	return uc.Standup.SubmitResponse(ctx, conv, tenant, response, uc.cardUpdater(conv))
}

func (uc *UseCases) cardUpdater(conv types.ConversationID) CardUpdateFunc {
	return func(ctx context.Context, activityID string, respondedNames []string) error {
		blocks := slacksvc.StandupCardBlocks(conv.String(), respondedNames)
		return uc.slackSvc.UpdateMessage(ctx, conv.String(), activityID, blocks, "Standup in progress")
	}
}

// memberMentions returns the message's mentioned user IDs with the bot's
// own mention removed. App mentions address the bot by mention, so its ID
// appears in the mention list of every command.
func (uc *UseCases) memberMentions(ctx context.Context, msg *chat.Message) []types.UserID {
	mentions := msg.Mentions()

	botID, err := uc.slackSvc.GetBotUserID(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "failed to resolve bot user ID")
		return mentions
	}

	ids := make([]types.UserID, 0, len(mentions))
	for _, id := range mentions {
		if id.String() == botID {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (uc *UseCases) resolveUsers(ctx context.Context, ids []types.UserID) []model.User {
	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		name, err := uc.slackSvc.GetUserName(ctx, id.String())
		if err != nil {
			errutil.Handle(ctx, err, "failed to resolve user name")
			name = id.String()
		}
		users = append(users, model.User{ID: id, Name: name})
	}
	return users
}

func (uc *UseCases) reply(ctx context.Context, conv types.ConversationID, text string) error {
	if text == "" {
		return nil
	}
	if err := uc.slackSvc.PostText(ctx, conv.String(), text); err != nil {
		return goerr.Wrap(err, "failed to post reply", goerr.V("conversation_id", conv))
	}
	return nil
}
