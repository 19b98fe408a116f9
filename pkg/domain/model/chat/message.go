package chat

import (
	"regexp"
	"strings"
	"time"

	"github.com/slack-go/slack/slackevents"

	"github.com/kohigashi/asakai/pkg/domain/types"
)

// mentionPattern matches inline Slack user mentions such as <@U123ABC>
var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|[^>]*)?>`)

// Message is an inbound chat message in domain terms: conversation and
// tenant identity, the sender, the raw text and the user IDs mentioned in
// it. It is immutable once built.
type Message struct {
	conversationID types.ConversationID
	tenantID       types.TenantID
	userID         types.UserID
	text           string
	mentions       []types.UserID
	eventTS        string
	createdAt      time.Time
}

// NewMessage builds a Message from a Slack Events API event. It returns nil
// for event types that do not carry a user message.
func NewMessage(ev *slackevents.EventsAPIEvent) *Message {
	if ev.Type != slackevents.CallbackEvent {
		return nil
	}

	now := time.Now()

	switch evt := ev.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		return &Message{
			conversationID: types.ConversationID(evt.Channel),
			tenantID:       types.TenantID(ev.TeamID),
			userID:         types.UserID(evt.User),
			text:           evt.Text,
			mentions:       parseMentions(evt.Text, evt.User),
			eventTS:        evt.TimeStamp,
			createdAt:      now,
		}

	case *slackevents.MessageEvent:
		// Ignore bot echoes and message edits
		if evt.BotID != "" || evt.SubType != "" {
			return nil
		}
		return &Message{
			conversationID: types.ConversationID(evt.Channel),
			tenantID:       types.TenantID(ev.TeamID),
			userID:         types.UserID(evt.User),
			text:           evt.Text,
			mentions:       parseMentions(evt.Text, evt.User),
			eventTS:        evt.TimeStamp,
			createdAt:      now,
		}

	default:
		return nil
	}
}

// parseMentions extracts mentioned user IDs from message text, in order,
// skipping the sender's own ID and duplicates.
func parseMentions(text, sender string) []types.UserID {
	var ids []types.UserID
	seen := map[string]bool{sender: true}
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		ids = append(ids, types.UserID(m[1]))
	}
	return ids
}

func (m *Message) ConversationID() types.ConversationID {
	return m.conversationID
}

func (m *Message) TenantID() types.TenantID {
	return m.tenantID
}

func (m *Message) UserID() types.UserID {
	return m.userID
}

func (m *Message) Text() string {
	return m.text
}

// PlainText returns the text with inline mention markup removed
func (m *Message) PlainText() string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(m.text, ""))
}

func (m *Message) Mentions() []types.UserID {
	return append([]types.UserID(nil), m.mentions...)
}

func (m *Message) EventTS() string {
	return m.eventTS
}

func (m *Message) CreatedAt() time.Time {
	return m.createdAt
}
