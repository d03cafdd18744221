// Package router wires the portal's HTTP surface: public pages, the
// authenticated parent portal, and the role-gated staff areas.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/http/handlers"
	"github.com/pediclinic/portal/internal/http/middleware"
	"github.com/pediclinic/portal/internal/push"
	"github.com/pediclinic/portal/internal/queue"
	"github.com/pediclinic/portal/internal/session"
	"github.com/pediclinic/portal/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	SessionCodec *session.CookieCodec
	SessionStore *session.Store

	Auth          *handlers.AuthHandler
	Booking       *handlers.BookingHandler
	Appointments  *handlers.AppointmentsHandler
	Admin         *handlers.AdminHandler
	Reception     *handlers.ReceptionHandler
	Notifications *handlers.NotificationsHandler
	Reviews       *handlers.ReviewsHandler
	Profile       *handlers.ProfileHandler

	Hub *push.Hub

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	AuthRateLimit      *middleware.RateLimiter
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}
	if cfg.SessionCodec != nil && cfg.SessionStore != nil {
		r.Use(middleware.Sessions(cfg.SessionCodec, cfg.SessionStore))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.Reviews != nil {
			public.Get("/api/reviews", cfg.Reviews.List)
			public.Post("/api/reviews", cfg.Reviews.Create)
		}
		if cfg.Booking != nil {
			public.Get("/api/booking/categories", cfg.Booking.Categories)
			public.Get("/api/booking/slots", cfg.Booking.Availability)
		}
		if cfg.Profile != nil {
			public.Get("/api/vaccines/schedule", cfg.Profile.Schedule)
		}
		if cfg.Appointments != nil {
			public.Get("/api/queue/today", cfg.Appointments.Today)
		}
	})

	// Auth endpoints, throttled when a limiter is configured.
	if cfg.Auth != nil {
		r.Route("/api/auth", func(auth chi.Router) {
			if cfg.AuthRateLimit != nil {
				auth.Use(cfg.AuthRateLimit.Middleware)
			}
			auth.Post("/login", cfg.Auth.Login)
			auth.Post("/register", cfg.Auth.Register)
			auth.Post("/send-otp", cfg.Auth.SendOTP)
			auth.Post("/forgot-password", cfg.Auth.ForgotPassword)
			auth.Post("/reset-password/{token}", cfg.Auth.ResetPassword)
			auth.Post("/logout", cfg.Auth.Logout)
			auth.With(middleware.RequireSessionAPI).Get("/me", cfg.Auth.Me)
			auth.With(middleware.RequireSessionAPI).Post("/change-password", cfg.Auth.ChangePassword)
		})
	}

	// Signed-in parent portal.
	r.Group(func(portal chi.Router) {
		portal.Use(middleware.RequireSessionAPI)
		if cfg.Booking != nil {
			portal.Post("/api/booking", cfg.Booking.Book)
		}
		if cfg.Appointments != nil {
			portal.Get("/api/appointments/mine", cfg.Appointments.List)
			portal.Delete("/api/appointments/{id}", cfg.Appointments.Cancel)
			portal.Get("/api/queue/status", cfg.Appointments.QueueStatus)
		}
		if cfg.Notifications != nil {
			portal.Get("/api/notifications", cfg.Notifications.List)
			portal.Put("/api/notifications/{id}/read", cfg.Notifications.MarkRead)
		}
		if cfg.Profile != nil {
			portal.Put("/api/profile", cfg.Profile.Update)
			portal.Post("/api/profile/children", cfg.Profile.AddChild)
			portal.Delete("/api/profile/children/{id}", cfg.Profile.DeleteChild)
			portal.Get("/api/profile/children/{id}/vaccines", cfg.Profile.VaccineCard)
			portal.Put("/api/profile/children/{id}/vaccines", cfg.Profile.SetVaccine)
		}
	})

	// Staff areas.
	if cfg.Admin != nil {
		r.Route("/api/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireRoleAPI(clinicapi.RoleAdmin))
			admin.Get("/appointments", cfg.Admin.List)
			admin.Delete("/appointments/{id}", cfg.Admin.Cancel)
			admin.Put("/appointments/{id}", cfg.Admin.Reschedule)
		})
	}
	if cfg.Reception != nil {
		r.Route("/api/reception", func(desk chi.Router) {
			desk.Use(middleware.RequireRoleAPI(clinicapi.RoleReceptionist, clinicapi.RoleAdmin))
			desk.Get("/today", cfg.Reception.Today)
			desk.Post("/quick-register", cfg.Reception.QuickRegister)
			desk.Get("/users", cfg.Reception.Search)
			desk.Post("/book", cfg.Reception.Book)
			desk.Put("/appointments/{id}/checkin", cfg.Reception.CheckIn)
			desk.Put("/appointments/{id}/complete", cfg.Reception.Complete)
		})
	}

	// Live updates.
	if cfg.Hub != nil {
		r.Handle("/ws", cfg.Hub.Handler(resolvePushTarget))
	}

	// Page-level role gates: the SPA shells redirect by role before any
	// content renders.
	r.With(middleware.RequireRole(clinicapi.RolePatient)).Get("/dashboard", pageStub("dashboard"))
	r.With(middleware.RequireRole(clinicapi.RoleReceptionist, clinicapi.RoleAdmin)).Get("/reception", pageStub("reception"))
	r.With(middleware.RequireRole(clinicapi.RoleAdmin)).Get("/admin", pageStub("admin"))

	return r
}

// resolvePushTarget maps an upgraded request to its session; the
// Sessions middleware already ran.
func resolvePushTarget(r *http.Request) (queue.PushTarget, bool) {
	sess, ok := middleware.SessionFromRequest(r)
	if !ok || sess.User == nil {
		return queue.PushTarget{}, false
	}
	return queue.PushTarget{SessionID: sess.ID, UserID: sess.User.ID, Token: sess.Token}, true
}

// pageStub marks the role-gated page mount points. Static assets are
// served by the CDN in front; the portal only enforces who may land.
func pageStub(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":"` + name + `"}`))
	}
}
