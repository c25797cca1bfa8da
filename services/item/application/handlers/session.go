package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/lostfound/pkg/auth"
	"github.com/ghuser/lostfound/pkg/errhttp"
	"github.com/ghuser/lostfound/pkg/httpx"
	"github.com/ghuser/lostfound/pkg/logger"
	pkgvalidator "github.com/ghuser/lostfound/pkg/validator"
)

// LoginRequest is the request body for POST /admin/login.
type LoginRequest struct {
	Password string `json:"password" validate:"required,max=256" example:"correct horse battery staple"`
} // @name LoginRequest

// SessionHandler starts and ends admin sessions.
type SessionHandler struct {
	store   sessions.Store
	checker *auth.PasswordChecker
	log     logger.Logger
}

// NewSessionHandler returns a SessionHandler.
func NewSessionHandler(store sessions.Store, checker *auth.PasswordChecker, log logger.Logger) *SessionHandler {
	return &SessionHandler{store: store, checker: checker, log: log}
}

// Login checks the admin password and sets the session cookie.
//
//	@Summary	Admin login
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		LoginRequest	true	"Admin password"
//	@Success	200		{object}	MessageResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	429		{object}	ErrorResponse
//	@Router		/admin/login [post]
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}
	if err := h.checker.Check(req.Password); err != nil {
		h.log.WarnContext(r.Context(), "admin login rejected", "remote_addr", r.RemoteAddr)
		errhttp.WriteError(w, err)
		return
	}
	if err := auth.Login(w, r, h.store); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	h.log.InfoContext(r.Context(), "admin logged in", "remote_addr", r.RemoteAddr)
	httpx.JSON(w, http.StatusOK, MessageResponse{Status: statusSuccess, Message: "logged in"})
}

// Logout ends the admin session.
//
//	@Summary	Admin logout
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	MessageResponse
//	@Router		/admin/logout [post]
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.Logout(w, r, h.store); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Status: statusSuccess, Message: "logged out"})
}
