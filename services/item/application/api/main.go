package api

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/lostfound/pkg/app"
	"github.com/ghuser/lostfound/pkg/auth"
	"github.com/ghuser/lostfound/pkg/httpx"
	"github.com/ghuser/lostfound/services/item/application/handlers"
	appsvcs "github.com/ghuser/lostfound/services/item/application/services"
)

// loginAttemptsPerMinute caps admin login attempts per client IP.
const loginAttemptsPerMinute = 5

// ItemRoutes registers item endpoints on the provided chi router.
//
// Intake, search and the action dispatcher are public; an admin session, when
// present, is attached to the request context. Point lookup, update, status
// change and delete require an admin session.
func ItemRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services, checker *auth.PasswordChecker) {
	intake := handlers.NewIntakeHandler(svcs)
	search := handlers.NewSearchItemsHandler(svcs)
	admin := handlers.NewAdminItemHandler(svcs)
	actions := handlers.NewActionsHandler(intake, search, admin)
	session := handlers.NewSessionHandler(a.SessionStore, checker, a.Logger)

	r.Group(func(r chi.Router) {
		r.Use(auth.LoadAdmin(a.SessionStore, a.Logger))

		r.Post("/items/found", intake.Found)
		r.Post("/items/lost", intake.Lost)
		r.Post("/items/search", search.Execute)
		r.Post("/actions", actions.Execute)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(a.SessionStore, a.Logger))

		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Get("/", admin.Get)
			r.Patch("/", admin.Update)
			r.Delete("/", admin.Delete)
			r.Put("/status", admin.ChangeStatus)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(httpx.RateLimit(loginAttemptsPerMinute, time.Minute)).Post("/login", session.Login)
		r.Post("/logout", session.Logout)
	})
}
