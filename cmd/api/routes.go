package main

import (
	"net/http"

	"github.com/cubanstagelink-ai/reupspots-app/internal/config"
	"github.com/cubanstagelink-ai/reupspots-app/internal/handlers"
	"github.com/cubanstagelink-ai/reupspots-app/internal/middleware"
)

// RegisterRoutes adds the /api endpoints to the given mux. Every route runs
// behind the identity middleware except the feed, which tolerates anonymous
// viewers: they get the non-NSFW slice, and a presented token still has to
// be valid.
func RegisterRoutes(
	mux *http.ServeMux,
	cfg config.Config,
	credits *handlers.CreditHandler,
	listings *handlers.ListingHandler,
	applications *handlers.ApplicationHandler,
	bookings *handlers.BookingHandler,
	escrow *handlers.EscrowHandler,
) {
	auth := middleware.Identity([]byte(cfg.JWTSecret))
	optionalAuth := middleware.OptionalIdentity([]byte(cfg.JWTSecret))

	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(h))
	}

	// Credits
	handle("GET /api/credits", credits.GetBalance)
	handle("GET /api/credits/log", credits.GetLog)
	handle("POST /api/credits/purchase", credits.StartPurchase)
	handle("POST /api/credits/purchase/confirm", credits.ConfirmPurchase)

	// Listings
	mux.Handle("GET /api/listings", optionalAuth(http.HandlerFunc(listings.Feed)))
	handle("POST /api/listings", listings.Create)
	handle("POST /api/listings/quote", listings.Quote)

	// Applications
	handle("POST /api/applications", applications.Apply)
	handle("POST /api/applications/{id}/respond", applications.Respond)

	// Bookings
	handle("POST /api/bookings", bookings.Create)
	handle("GET /api/bookings/{id}", bookings.Get)
	handle("POST /api/bookings/{id}/installment", bookings.RecordInstallment)
	handle("POST /api/bookings/{id}/status", bookings.SetStatus)

	// Escrow
	handle("POST /api/bookings/{id}/escrow/reserve", escrow.Reserve)
	handle("POST /api/bookings/{id}/escrow/confirm", escrow.Confirm)
	handle("POST /api/bookings/{id}/escrow/release", escrow.Release)
	handle("POST /api/bookings/{id}/escrow/cancel", escrow.Cancel)
}
