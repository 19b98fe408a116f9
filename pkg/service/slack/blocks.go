package slack

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// Slack interaction identifiers shared between the card builders and the
// interaction handler.
const (
	// ActionIDOpenResponse is the action ID of the "Post update" button on
	// the standup card. Its value carries the conversation ID.
	ActionIDOpenResponse = "asakai_open_response"

	// CallbackIDResponseModal identifies the response modal view submission.
	// Its private metadata carries the conversation ID.
	CallbackIDResponseModal = "asakai_response_modal"

	// Input block/action IDs within the response modal
	BlockIDCompletedWork = "completed_work"
	BlockIDPlannedWork   = "planned_work"
	BlockIDParkingLot    = "parking_lot"
	ActionIDInput        = "input"
)

// StandupCardBlocks builds the standup card: a heading, the list of members
// who have responded so far, and a button opening the response modal. The
// same builder renders both the initial card and its live updates.
func StandupCardBlocks(conversationID string, respondedNames []string) []slack.Block {
	var progress string
	if len(respondedNames) == 0 {
		progress = "_No updates yet._"
	} else {
		progress = fmt.Sprintf(":white_check_mark: %s", strings.Join(respondedNames, ", "))
	}

	return []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, "Daily standup", false, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				"Share what you finished and what you plan to do next.\n"+progress, false, false),
			nil, nil,
		),
		slack.NewActionBlock(
			"asakai_standup_actions",
			slack.NewButtonBlockElement(
				ActionIDOpenResponse,
				conversationID,
				slack.NewTextBlockObject(slack.PlainTextType, "Post update", false, false),
			).WithStyle(slack.StylePrimary),
		),
	}
}

// ResponseModalView builds the modal collecting a standup response
func ResponseModalView(conversationID string) slack.ModalViewRequest {
	multiline := func(placeholder string) *slack.PlainTextInputBlockElement {
		el := slack.NewPlainTextInputBlockElement(
			slack.NewTextBlockObject(slack.PlainTextType, placeholder, false, false),
			ActionIDInput,
		)
		el.Multiline = true
		return el
	}

	completed := slack.NewInputBlock(
		BlockIDCompletedWork,
		slack.NewTextBlockObject(slack.PlainTextType, "Completed work", false, false),
		nil,
		multiline("One item per line"),
	)

	planned := slack.NewInputBlock(
		BlockIDPlannedWork,
		slack.NewTextBlockObject(slack.PlainTextType, "Planned work", false, false),
		nil,
		multiline("One item per line"),
	)

	parking := slack.NewInputBlock(
		BlockIDParkingLot,
		slack.NewTextBlockObject(slack.PlainTextType, "Parking lot", false, false),
		nil,
		multiline("Anything to discuss as a team (optional)"),
	)
	parking.Optional = true

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      CallbackIDResponseModal,
		PrivateMetadata: conversationID,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Standup update", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Submit", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{completed, planned, parking},
		},
	}
}
