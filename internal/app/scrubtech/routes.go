package scrubtech

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/auth/register"
	billingcheckout "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/billing/checkout"
	billingportal "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/billing/portal"
	billingstatus "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/billing/status"
	billingwebhook "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/billing/webhook"
	favoriteadd "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/favorite/add"
	favoritelist "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/favorite/list"
	favoriteremove "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/favorite/remove"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/forum/commentcreate"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/forum/postcreate"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/forum/postlist"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/forum/postread"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/health"
	notecreate "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/note/create"
	notelist "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/note/list"
	noteremove "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/note/remove"
	noteupdate "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/note/update"
	procedurelist "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/procedure/list"
	procedureread "github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/procedure/read"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/specialty/listspecialty"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/specialty/readselection"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/handlers/specialty/selectspecialty"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/auth"
	billingservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/billing"
	communityservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/community"
	contentservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/content"
	selectionservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/selection"
)

// Services собирает сервисы приложения для регистрации маршрутов.
type Services struct {
	Auth      *authservice.AuthService
	Selection *selectionservice.Service
	Billing   *billingservice.Service
	Content   *contentservice.Service
	Community *communityservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Webhook платёжного провайдера (без аутентификации, подпись
		// проверяется по телу запроса)
		r.Post("/billing/webhook", billingwebhook.New(logger, s.Billing).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/specialties", listspecialty.New(logger, s.Selection).ServeHTTP)
			r.Get("/specialties/selection", readselection.New(logger, s.Selection).ServeHTTP)
			r.Post("/specialties/select", selectspecialty.New(logger, s.Selection).ServeHTTP)

			r.Post("/billing/checkout-session", billingcheckout.New(logger, s.Billing).ServeHTTP)
			r.Post("/billing/portal-session", billingportal.New(logger, s.Billing).ServeHTTP)
			r.Get("/billing/status", billingstatus.New(logger, s.Billing).ServeHTTP)

			r.Get("/procedures", procedurelist.New(logger, s.Content).ServeHTTP)
			r.Get("/procedures/{id}", procedureread.New(logger, s.Content).ServeHTTP)

			r.Post("/notes", notecreate.New(logger, s.Content).ServeHTTP)
			r.Get("/notes", notelist.New(logger, s.Content).ServeHTTP)
			r.Put("/notes/{id}", noteupdate.New(logger, s.Content).ServeHTTP)
			r.Delete("/notes/{id}", noteremove.New(logger, s.Content).ServeHTTP)

			r.Post("/favorites", favoriteadd.New(logger, s.Content).ServeHTTP)
			r.Get("/favorites", favoritelist.New(logger, s.Content).ServeHTTP)
			r.Delete("/favorites/{id}", favoriteremove.New(logger, s.Content).ServeHTTP)

			r.Get("/forum/posts", postlist.New(logger, s.Community).ServeHTTP)
			r.Post("/forum/posts", postcreate.New(logger, s.Community).ServeHTTP)
			r.Get("/forum/posts/{id}", postread.New(logger, s.Community).ServeHTTP)
			r.Post("/forum/posts/{id}/comments", commentcreate.New(logger, s.Community).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
