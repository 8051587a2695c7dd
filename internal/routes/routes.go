package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Senjuv/healt-tracker/internal/handlers"
	"github.com/Senjuv/healt-tracker/internal/middleware"
)

func SetupRoutes(r *chi.Mux, h *handlers.Handler) {
	// Auth routes
	r.Post("/api/auth/session", h.CreateSession)
	r.Post("/api/auth/signup", h.Signup)
	r.Post("/api/auth/signin", h.Signin)
	r.Post("/api/auth/logout", h.Logout)
	r.Get("/api/auth/me", h.Me)

	// Weight journal
	r.Post("/api/weights", h.CreateWeight)
	r.Get("/api/weights", h.GetWeights)

	// Nutrition history
	r.Post("/api/nutrition", h.SaveNutrition)
	r.Get("/api/nutrition", h.GetNutrition)

	// Skin journal
	r.Post("/api/skin", h.SaveSkin)
	r.Get("/api/skin", h.GetSkin)

	// Generation endpoints; task is a closed set, anything else is 404.
	// Extra per-IP limiter on top of the global one.
	r.Route("/api/ai", func(r chi.Router) {
		r.Use(middleware.AIRateLimit)
		r.Post("/{task:meal-plan|photo-analysis|symptom-check|progress-advice|skin-analysis}", h.Generate)
	})

	// Photo upload (Cloudinary)
	r.Post("/api/upload", h.UploadPhoto)

	// WebSocket endpoint for the live record feed
	r.Get("/ws/feed", h.FeedWebSocket)
}
