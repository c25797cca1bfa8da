package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ghuser/lostfound/pkg/auth"
	"github.com/ghuser/lostfound/pkg/errhttp"
	"github.com/ghuser/lostfound/pkg/httpx"
	pkgvalidator "github.com/ghuser/lostfound/pkg/validator"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/models"
)

// Actions accepted by POST /actions.
const (
	ActionCreateFound  = "create_found"
	ActionCreateLost   = "create_lost"
	ActionSearch       = "search"
	ActionDelete       = "delete"
	ActionChangeStatus = "change_status"
	ActionUpdate       = "update"
)

// ActionRequest is the envelope of POST /actions. The remaining fields of the
// body are those of the request type the action maps to:
//   - create_found, create_lost: ReportItemRequest
//   - search: SearchItemsRequest
//   - change_status: item_id and status
//   - update: item_id and updates
//   - delete: item_id
type ActionRequest struct {
	Action string `json:"action"  validate:"required,oneof=create_found create_lost search delete change_status update" example:"change_status"`
	ItemID string `json:"item_id" example:"550e8400-e29b-41d4-a716-446655440000"`
} // @name ActionRequest

// Trim strips surrounding whitespace from action and item_id.
func (r *ActionRequest) Trim() {
	trim(&r.Action)
	trim(&r.ItemID)
}

// ActionsHandler dispatches a single action body to the matching handler.
// Admin actions require an admin session on the request context.
type ActionsHandler struct {
	intake *IntakeHandler
	search *SearchItemsHandler
	admin  *AdminItemHandler
}

// NewActionsHandler returns an ActionsHandler delegating to the given handlers.
func NewActionsHandler(intake *IntakeHandler, search *SearchItemsHandler, admin *AdminItemHandler) *ActionsHandler {
	return &ActionsHandler{intake: intake, search: search, admin: admin}
}

// Execute dispatches on the action field.
//
//	@Summary		Dispatch an action
//	@Description	Single entry point accepting {"action": ..., ...}. delete, change_status and update require an admin session.
//	@Tags			actions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ActionRequest	true	"Action envelope"
//	@Success		200		{object}	MessageResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/actions [post]
func (h *ActionsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	body, ok := httpx.ReadBody(w, r)
	if !ok {
		return
	}

	var env ActionRequest
	if !decodeInto(w, body, &env) {
		return
	}
	ctx := r.Context()

	switch env.Action {
	case ActionCreateFound, ActionCreateLost:
		var req ReportItemRequest
		if !decodeInto(w, body, &req) {
			return
		}
		t := models.ItemTypeFound
		if env.Action == ActionCreateLost {
			t = models.ItemTypeLost
		}
		h.intake.create(ctx, w, t, &req)
		return

	case ActionSearch:
		var req SearchItemsRequest
		if !decodeInto(w, body, &req) {
			return
		}
		h.search.search(ctx, w, &req)
		return
	}

	if !auth.IsAdmin(ctx) {
		errhttp.WriteError(w, fmt.Errorf("%w: action %s", itemdomain.ErrUnauthorized, env.Action))
		return
	}
	if err := requireItemID(env.ItemID); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	switch env.Action {
	case ActionDelete:
		h.admin.delete(ctx, w, env.ItemID)
	case ActionChangeStatus:
		var req ChangeStatusRequest
		if !decodeInto(w, body, &req) {
			return
		}
		h.admin.changeStatus(ctx, w, env.ItemID, req.Status)
	case ActionUpdate:
		var req UpdateItemRequest
		if !decodeInto(w, body, &req) {
			return
		}
		h.admin.update(ctx, w, env.ItemID, &req)
	}
}

// decodeInto unmarshals body into v and validates it, writing the error
// response on failure.
func decodeInto(w http.ResponseWriter, body []byte, v any) bool {
	if err := json.Unmarshal(body, v); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, httpx.MsgInvalidJSON)
		return false
	}
	return pkgvalidator.ValidateValue(w, v)
}
