package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/lostfound/pkg/errhttp"
	"github.com/ghuser/lostfound/pkg/httpx"
	pkgvalidator "github.com/ghuser/lostfound/pkg/validator"
	appsvcs "github.com/ghuser/lostfound/services/item/application/services"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/models"
)

// UpdateItemRequest is the request body for PATCH /items/{itemID}.
// updates is a partial merge keyed by attribute name.
type UpdateItemRequest struct {
	Updates map[string]string `json:"updates" example:"brand:Coach,location:Main Hall"`
} // @name UpdateItemRequest

// Trim strips surrounding whitespace from every value.
func (r *UpdateItemRequest) Trim() {
	for k, v := range r.Updates {
		r.Updates[k] = strings.TrimSpace(v)
	}
}

// ChangeStatusRequest is the request body for PUT /items/{itemID}/status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,max=64" example:"RETURNED"`
} // @name ChangeStatusRequest

// Trim strips surrounding whitespace from the status.
func (r *ChangeStatusRequest) Trim() { trim(&r.Status) }

// DeleteItemResponse reports an administrative delete. orphaned_image is set
// when the record was removed but its image could not be.
type DeleteItemResponse struct {
	Status        string `json:"status"         example:"success"`
	Message       string `json:"message"        example:"item deleted"`
	ItemID        string `json:"item_id"        example:"550e8400-e29b-41d4-a716-446655440000"`
	OrphanedImage bool   `json:"orphaned_image" example:"false"`
} // @name DeleteItemResponse

// AdminItemHandler serves the administrative item operations. Routes using it
// are mounted behind auth.RequireAdmin.
type AdminItemHandler struct {
	svc *appsvcs.Services
}

// NewAdminItemHandler returns an AdminItemHandler backed by the given services.
func NewAdminItemHandler(svc *appsvcs.Services) *AdminItemHandler {
	return &AdminItemHandler{svc: svc}
}

// Get returns one item.
//
//	@Summary	Get item
//	@Tags		admin
//	@Produce	json
//	@Param		itemID	path		string	true	"Item ID"
//	@Success	200		{object}	ItemEnvelope
//	@Failure	401		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/items/{itemID} [get]
func (h *AdminItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Item.GetByID(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ItemEnvelope{Status: statusSuccess, Item: toItemResponse(item)})
}

// Update applies a partial update.
//
//	@Summary		Update item fields
//	@Description	Merges the given attributes into the item. Identity and derived attributes cannot be changed.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			itemID	path		string				true	"Item ID"
//	@Param			request	body		UpdateItemRequest	true	"Attributes to change"
//	@Success		200		{object}	ItemEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/items/{itemID} [patch]
func (h *AdminItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}
	h.update(r.Context(), w, chi.URLParam(r, "itemID"), req)
}

// ChangeStatus sets the case status.
//
//	@Summary		Change item status
//	@Description	Sets any status valid for the item type. Legacy status labels are accepted.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			itemID	path		string				true	"Item ID"
//	@Param			request	body		ChangeStatusRequest	true	"New status"
//	@Success		200		{object}	ItemEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/items/{itemID}/status [put]
func (h *AdminItemHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ChangeStatusRequest](w, r)
	if !ok {
		return
	}
	h.changeStatus(r.Context(), w, chi.URLParam(r, "itemID"), req.Status)
}

// Delete removes an item and its image.
//
//	@Summary		Delete item
//	@Description	Removes the image (best effort) and then the record.
//	@Tags			admin
//	@Produce		json
//	@Param			itemID	path		string	true	"Item ID"
//	@Success		200		{object}	DeleteItemResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/items/{itemID} [delete]
func (h *AdminItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.delete(r.Context(), w, chi.URLParam(r, "itemID"))
}

func (h *AdminItemHandler) update(ctx context.Context, w http.ResponseWriter, id string, req *UpdateItemRequest) {
	item, err := h.svc.Lifecycle.UpdateFields(ctx, id, models.FieldUpdates(req.Updates))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ItemEnvelope{
		Status:  statusSuccess,
		Message: "item updated",
		Item:    toItemResponse(item),
	})
}

func (h *AdminItemHandler) changeStatus(ctx context.Context, w http.ResponseWriter, id, status string) {
	item, err := h.svc.Lifecycle.ChangeStatus(ctx, id, status)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ItemEnvelope{
		Status:  statusSuccess,
		Message: fmt.Sprintf("status changed to %s", item.Status),
		Item:    toItemResponse(item),
	})
}

func (h *AdminItemHandler) delete(ctx context.Context, w http.ResponseWriter, id string) {
	outcome, err := h.svc.Lifecycle.Delete(ctx, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	message := "item deleted"
	if outcome.OrphanedImage() {
		message = "item deleted; image could not be removed"
	}
	httpx.JSON(w, http.StatusOK, DeleteItemResponse{
		Status:        statusSuccess,
		Message:       message,
		ItemID:        outcome.ItemID,
		OrphanedImage: outcome.OrphanedImage(),
	})
}

func requireItemID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: item_id is required", itemdomain.ErrValidation)
	}
	return nil
}
