package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ghuser/lostfound/pkg/auth"
	"github.com/ghuser/lostfound/pkg/errhttp"
	"github.com/ghuser/lostfound/pkg/httpx"
	pkgvalidator "github.com/ghuser/lostfound/pkg/validator"
	appsvcs "github.com/ghuser/lostfound/services/item/application/services"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/search"
)

// SearchItemsRequest is the request body for POST /items/search.
// Every filter is optional. search_mode "admin" requires an admin session.
type SearchItemsRequest struct {
	SearchMode string `json:"search_mode" validate:"omitempty,oneof=user admin" example:"user"`
	Keyword    string `json:"keyword"     validate:"max=2000"                   example:"wallet"`
	Location   string `json:"location"    validate:"max=2000"                   example:"library"`
	Date       string `json:"date"        validate:"max=64"                     example:"2024-01-15"`
	Status     string `json:"status"      validate:"max=64"                     example:"REPORTED"`
	Details    string `json:"details"     validate:"max=2000"                   example:"leather"`
} // @name SearchItemsRequest

// Trim strips surrounding whitespace from every filter.
func (r *SearchItemsRequest) Trim() {
	for _, f := range []*string{&r.SearchMode, &r.Keyword, &r.Location, &r.Date, &r.Status, &r.Details} {
		trim(f)
	}
}

func (r *SearchItemsRequest) criteria() search.Criteria {
	return search.Criteria{
		Role:     search.ParseRole(r.SearchMode),
		Keyword:  r.Keyword,
		Location: r.Location,
		Date:     r.Date,
		Status:   r.Status,
		Details:  r.Details,
	}
}

// SearchItemsResponse is the ordered result set. count always equals len(items).
type SearchItemsResponse struct {
	Status string         `json:"status" example:"success"`
	Count  int            `json:"count"  example:"1"`
	Items  []ItemResponse `json:"items"`
} // @name SearchItemsResponse

// SearchItemsHandler runs user and admin searches.
type SearchItemsHandler struct {
	svc *appsvcs.Services
}

// NewSearchItemsHandler returns a SearchItemsHandler backed by the given services.
func NewSearchItemsHandler(svc *appsvcs.Services) *SearchItemsHandler {
	return &SearchItemsHandler{svc: svc}
}

// Execute searches items.
//
//	@Summary		Search items
//	@Description	User searches see found items only. Admin searches see every item and may filter by status.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SearchItemsRequest	true	"Search criteria"
//	@Success		200		{object}	SearchItemsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/items/search [post]
func (h *SearchItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[SearchItemsRequest](w, r)
	if !ok {
		return
	}
	h.search(r.Context(), w, req)
}

func (h *SearchItemsHandler) search(ctx context.Context, w http.ResponseWriter, req *SearchItemsRequest) {
	c := req.criteria()
	if c.Role == search.RoleAdmin && !auth.IsAdmin(ctx) {
		errhttp.WriteError(w, fmt.Errorf("%w: admin search", itemdomain.ErrUnauthorized))
		return
	}

	res, err := h.svc.Search.Search(ctx, c)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SearchItemsResponse{
		Status: statusSuccess,
		Count:  res.Count,
		Items:  toItemResponses(res.Items),
	})
}
