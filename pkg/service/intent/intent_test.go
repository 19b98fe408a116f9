package intent_test

import (
	"testing"

	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/service/intent"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		parsed bool
		intent types.Intent
		args   []string
	}{
		{name: "register", text: "!register", parsed: true, intent: types.IntentRegister},
		{name: "register with storage", text: "!register notion abc123", parsed: true, intent: types.IntentRegister, args: []string{"notion", "abc123"}},
		{name: "add", text: "!add <@U111> <@U222>", parsed: true, intent: types.IntentAddUsers, args: []string{"<@U111>", "<@U222>"}},
		{name: "remove", text: "!remove <@U111>", parsed: true, intent: types.IntentRemoveUsers, args: []string{"<@U111>"}},
		{name: "group details", text: "!group details", parsed: true, intent: types.IntentGroupDetails},
		{name: "start standup", text: "!start standup", parsed: true, intent: types.IntentStartStandup},
		{name: "restart standup", text: "!restart standup", parsed: true, intent: types.IntentRestartStandup},
		{name: "close standup", text: "!close standup", parsed: true, intent: types.IntentCloseStandup},
		{name: "case insensitive", text: "!Start Standup", parsed: true, intent: types.IntentStartStandup},
		{name: "leading whitespace", text: "   !close standup", parsed: true, intent: types.IntentCloseStandup},
		{name: "unknown command", text: "!dance", parsed: true, intent: types.IntentUnknown},
		{name: "start without object", text: "!start", parsed: true, intent: types.IntentUnknown},
		{name: "free text", text: "let's start the standup", parsed: false},
		{name: "bare bang", text: "!", parsed: false},
		{name: "empty", text: "", parsed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, ok := intent.ParseCommand(tc.text)
			if ok != tc.parsed {
				t.Fatalf("parsed = %v, want %v", ok, tc.parsed)
			}
			if !ok {
				return
			}
			if cmd.Intent != tc.intent {
				t.Errorf("intent = %s, want %s", cmd.Intent, tc.intent)
			}
			if len(cmd.Args) != len(tc.args) {
				t.Fatalf("args = %v, want %v", cmd.Args, tc.args)
			}
			for i := range tc.args {
				if cmd.Args[i] != tc.args[i] {
					t.Errorf("args[%d] = %q, want %q", i, cmd.Args[i], tc.args[i])
				}
			}
		})
	}
}
