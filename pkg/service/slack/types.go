package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Service provides the chat transport operations the bot needs: posting and
// live-updating messages, opening the response modal, and resolving users.
type Service interface {
	// PostMessage posts a Block Kit message and returns its timestamp,
	// which doubles as the activity handle for later in-place updates.
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error)

	// PostText posts a plain text message
	PostText(ctx context.Context, channelID, text string) error

	// UpdateMessage rewrites an existing message identified by its timestamp
	UpdateMessage(ctx context.Context, channelID, timestamp string, blocks []slack.Block, text string) error

	// OpenView opens a modal for the given interaction trigger
	OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error

	// GetUserName resolves a user's display name (with caching)
	GetUserName(ctx context.Context, userID string) (string, error)

	// GetBotUserID returns the bot's own user ID (cached after first call)
	GetBotUserID(ctx context.Context) (string, error)
}
