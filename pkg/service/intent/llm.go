package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/kohigashi/asakai/pkg/domain/types"
)

// classifiedIntent is the JSON structure the model fills in
type classifiedIntent struct {
	Intent string `json:"intent"`
}

type llmClassifier struct {
	client gollem.LLMClient
}

// NewLLMClassifier builds a Classifier backed by a gollem LLM client. The
// model is constrained to a JSON response whose intent field is one of the
// named intents or "unknown".
func NewLLMClassifier(client gollem.LLMClient) Classifier {
	return &llmClassifier{client: client}
}

func (c *llmClassifier) Classify(ctx context.Context, text string) (types.Intent, error) {
	names := make([]string, 0, len(types.AllIntents())+1)
	for _, it := range types.AllIntents() {
		names = append(names, it.String())
	}
	names = append(names, types.IntentUnknown.String())

	schema := &gollem.Parameter{
		Title:       "StandupIntent",
		Description: "Resolved intent of a message sent to a standup bot",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"intent": {
				Type:        gollem.TypeString,
				Description: "The single best matching intent name",
				Enum:        names,
				Required:    true,
			},
		},
	}

	session, err := c.client.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(schema),
	)
	if err != nil {
		return types.IntentUnknown, goerr.Wrap(err, "failed to create intent classification session")
	}

	prompt := fmt.Sprintf(`You route messages sent to a standup bot in a team chat. Decide what the author wants.

Intents:
- register: create a standup group in this conversation
- add: add the mentioned users to the group
- remove: remove the mentioned users from the group
- groupDetails: show the group members and status
- startStandup: start collecting standup responses
- restartStandup: discard the running standup and start a fresh one
- closeStandup: finish the standup and post the summary
- purpose: the author asks what the bot is or what it does
- unknown: none of the above

Message:
%s`, text)

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return types.IntentUnknown, goerr.Wrap(err, "failed to classify intent")
	}
	if len(resp.Texts) == 0 {
		return types.IntentUnknown, goerr.New("intent classification returned empty result")
	}

	var parsed classifiedIntent
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Texts[0])), &parsed); err != nil {
		return types.IntentUnknown, goerr.Wrap(err, "failed to parse intent classification JSON",
			goerr.V("response", resp.Texts[0]),
		)
	}

	intent := types.Intent(parsed.Intent)
	if !intent.IsValid() {
		return types.IntentUnknown, nil
	}
	return intent, nil
}
