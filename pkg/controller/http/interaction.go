package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/kohigashi/asakai/pkg/domain/model"
	"github.com/kohigashi/asakai/pkg/domain/types"
	slacksvc "github.com/kohigashi/asakai/pkg/service/slack"
	"github.com/kohigashi/asakai/pkg/usecase"
	"github.com/kohigashi/asakai/pkg/utils/errutil"
	"github.com/kohigashi/asakai/pkg/utils/logging"
)

// SlackInteractionHandler handles Slack interactive component payloads: the
// card's "Post update" button and the response modal submission.
type SlackInteractionHandler struct {
	uc *usecase.UseCases
}

// NewSlackInteractionHandler creates a new Slack interaction handler
func NewSlackInteractionHandler(uc *usecase.UseCases) *SlackInteractionHandler {
	return &SlackInteractionHandler{uc: uc}
}

func (h *SlackInteractionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Slack sends interactions as application/x-www-form-urlencoded with a
	// "payload" field containing JSON
	payload := r.FormValue("payload")
	if payload == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("missing payload field in interaction request"), http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse interaction payload"), http.StatusBadRequest)
		return
	}

	switch callback.Type {
	case slack.InteractionTypeBlockActions:
		h.handleBlockActions(w, r, &callback)

	case slack.InteractionTypeViewSubmission:
		h.handleViewSubmission(w, r, &callback)

	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *SlackInteractionHandler) handleBlockActions(w http.ResponseWriter, r *http.Request, callback *slack.InteractionCallback) {
	ctx := r.Context()

	for _, action := range callback.ActionCallback.BlockActions {
		if action.ActionID != slacksvc.ActionIDOpenResponse {
			continue
		}

		conv := types.ConversationID(action.Value)
		if err := h.uc.OpenResponseModal(ctx, callback.TriggerID, conv); err != nil {
			logging.From(ctx).Error("failed to open response modal",
				"error", err,
				"conversation_id", conv,
			)
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (h *SlackInteractionHandler) handleViewSubmission(w http.ResponseWriter, r *http.Request, callback *slack.InteractionCallback) {
	ctx := r.Context()

	if callback.View.CallbackID != slacksvc.CallbackIDResponseModal {
		w.WriteHeader(http.StatusOK)
		return
	}

	conv := types.ConversationID(callback.View.PrivateMetadata)
	tenant := types.TenantID(callback.Team.ID)

	response := model.StandupResponse{
		UserID:        types.UserID(callback.User.ID),
		CompletedWork: viewInput(callback, slacksvc.BlockIDCompletedWork),
		PlannedWork:   viewInput(callback, slacksvc.BlockIDPlannedWork),
		ParkingLot:    viewInput(callback, slacksvc.BlockIDParkingLot),
		Timestamp:     time.Now().UTC(),
	}

	result := h.uc.SubmitStandupResponse(ctx, conv, tenant, response)
	if result.OK() {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Keep the modal open with the failure attached to its first input
	resp := map[string]any{
		"response_action": "errors",
		"errors": map[string]string{
			slacksvc.BlockIDCompletedWork: result.Message,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.From(ctx).Error("failed to write view submission response", "error", err)
	}
}

func viewInput(callback *slack.InteractionCallback, blockID string) string {
	if callback.View.State == nil {
		return ""
	}
	actions, ok := callback.View.State.Values[blockID]
	if !ok {
		return ""
	}
	return actions[slacksvc.ActionIDInput].Value
}
