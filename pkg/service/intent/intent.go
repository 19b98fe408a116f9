package intent

import (
	"context"
	"strings"

	"github.com/kohigashi/asakai/pkg/domain/types"
)

// Classifier resolves free-form text into one of the bot's named intents.
// Any implementation satisfying this contract is substitutable; the bot
// works with exact commands alone when no classifier is configured.
type Classifier interface {
	Classify(ctx context.Context, text string) (types.Intent, error)
}

// Command is a parsed exact command: the resolved intent and any trailing
// arguments after the command word.
type Command struct {
	Intent types.Intent
	Args   []string
}

// ParseCommand parses a "!"-prefixed exact command. It returns false when
// the text is not an exact command; free text is the classifier's job.
func ParseCommand(text string) (Command, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "!") {
		return Command{}, false
	}

	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return Command{}, false
	}

	head := strings.ToLower(fields[0])
	rest := strings.ToLower(strings.Join(fields[1:], " "))

	switch head {
	case "register":
		return Command{Intent: types.IntentRegister, Args: fields[1:]}, true
	case "add":
		return Command{Intent: types.IntentAddUsers, Args: fields[1:]}, true
	case "remove":
		return Command{Intent: types.IntentRemoveUsers, Args: fields[1:]}, true
	case "group":
		if strings.HasPrefix(rest, "details") {
			return Command{Intent: types.IntentGroupDetails}, true
		}
	case "start":
		if strings.HasPrefix(rest, "standup") {
			return Command{Intent: types.IntentStartStandup}, true
		}
	case "restart":
		if strings.HasPrefix(rest, "standup") {
			return Command{Intent: types.IntentRestartStandup}, true
		}
	case "close":
		if strings.HasPrefix(rest, "standup") {
			return Command{Intent: types.IntentCloseStandup}, true
		}
	}

	return Command{Intent: types.IntentUnknown}, true
}
