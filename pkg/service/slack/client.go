package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// DefaultCacheTTL is the default TTL for the user name cache
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	name      string
	expiresAt time.Time
}

// client implements Service
type client struct {
	api      *slack.Client
	cacheTTL time.Duration

	mu        sync.RWMutex
	userCache map[string]cacheEntry
	botUserID string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for the user name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		api:       slack.New(token),
		cacheTTL:  DefaultCacheTTL,
		userCache: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return ts, nil
}

func (c *client) PostText(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return goerr.Wrap(err, "failed to post text message", goerr.V("channel_id", channelID))
	}
	return nil
}

func (c *client) UpdateMessage(ctx context.Context, channelID, timestamp string, blocks []slack.Block, text string) error {
	_, _, _, err := c.api.UpdateMessageContext(ctx, channelID, timestamp,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to update message",
			goerr.V("channel_id", channelID),
			goerr.V("timestamp", timestamp),
		)
	}
	return nil
}

func (c *client) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return goerr.Wrap(err, "failed to open view", goerr.V("trigger_id", triggerID))
	}
	return nil
}

func (c *client) GetUserName(ctx context.Context, userID string) (string, error) {
	now := time.Now()

	c.mu.RLock()
	if entry, ok := c.userCache[userID]; ok && now.Before(entry.expiresAt) {
		c.mu.RUnlock()
		return entry.name, nil
	}
	c.mu.RUnlock()

	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get user info", goerr.V("user_id", userID))
	}

	name := user.Profile.DisplayName
	if name == "" {
		name = user.RealName
	}
	if name == "" {
		name = user.Name
	}

	c.mu.Lock()
	c.userCache[userID] = cacheEntry{name: name, expiresAt: now.Add(c.cacheTTL)}
	c.mu.Unlock()

	return name, nil
}

func (c *client) GetBotUserID(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.botUserID != "" {
		defer c.mu.RUnlock()
		return c.botUserID, nil
	}
	c.mu.RUnlock()

	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call auth.test")
	}

	c.mu.Lock()
	c.botUserID = resp.UserID
	c.mu.Unlock()

	return resp.UserID, nil
}
