package handlers

import (
	"net/http"
	"time"

	"doggydate-backend/internal/metrics"
	"doggydate-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Routes groups the handlers served by the API
type Routes struct {
	Users     *UserHandler
	Pets      *PetHandler
	Matches   *MatchHandler
	Chats     *ChatHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler

	Auth           func(http.Handler) http.Handler
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter builds the chi router with all public and authenticated routes
func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RealIP)
	r.Use(hlog.NewHandler(rt.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(rt.AllowedOrigins))

	// Public routes
	if rt.Health != nil {
		r.Get("/health", rt.Health.Health)
	}
	r.Handle("/metrics", metrics.Handler())
	r.Post("/usuarios", rt.Users.Register)
	r.Post("/usuarios/login", rt.Users.Login)

	// WebSocket route, authenticated by its token query parameter
	if rt.WebSocket != nil {
		r.Get("/ws", rt.WebSocket.HandleWebSocket)
	}

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(rt.Auth)

		r.Get("/usuarios/{userId}", rt.Users.GetUser)
		r.Put("/usuarios/{userId}", rt.Users.UpdateUser)
		r.Delete("/usuarios/{userId}", rt.Users.DeleteUser)
		r.Get("/usuarios/{userId}/mascotas", rt.Users.ListUserPets)

		r.Post("/mascotas", rt.Pets.CreatePet)
		r.Get("/mascotas/disponibles/{userId}", rt.Matches.AvailablePets)
		r.Get("/mascotas/{petId}", rt.Pets.GetPet)
		r.Put("/mascotas/{petId}", rt.Pets.UpdatePet)
		r.Delete("/mascotas/{petId}", rt.Pets.DeletePet)
		r.Post("/mascotas/{petId}/imagenes", rt.Pets.RequestImageUpload)
		r.Get("/mascotas/{petId}/vacunas", rt.Pets.ListVaccines)
		r.Post("/mascotas/{petId}/vacunas", rt.Pets.CreateVaccine)
		r.Put("/vacunas/{vaccineId}", rt.Pets.UpdateVaccine)
		r.Delete("/vacunas/{vaccineId}", rt.Pets.DeleteVaccine)

		r.Post("/matches", rt.Matches.Like)
		r.Post("/rechazos", rt.Matches.Reject)

		r.Get("/chats", rt.Chats.ListChats)
		r.Delete("/chats", rt.Chats.DeleteChats)
		r.Delete("/chats/{chatId}", rt.Chats.DeleteChat)
		r.Get("/chats/{chatId}/mensajes", rt.Chats.ListMessages)
		r.Post("/chats/{chatId}/mensajes", rt.Chats.SendMessage)
	})

	return r
}
