package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/payflowhq/payflow/internal/auth"
	"github.com/payflowhq/payflow/internal/enrichment"
	"github.com/payflowhq/payflow/internal/event"
	"github.com/payflowhq/payflow/internal/notification"
	"github.com/payflowhq/payflow/internal/report"
	"github.com/payflowhq/payflow/internal/request"
	"github.com/payflowhq/payflow/internal/transport/middleware"
	"github.com/payflowhq/payflow/internal/transport/swagger"
	"github.com/payflowhq/payflow/internal/user"
)

type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Event        *event.Handler
	Request      *request.Handler
	Supplier     *request.SupplierHandler
	Notification *notification.Handler
	Report       *report.Handler
	Enrichment   *enrichment.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, rbac *auth.RBACAuthorization, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if handlers.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", handlers.Auth.Login)
				sr.Post("/refresh", handlers.Auth.RefreshToken)
				sr.Post("/logout", handlers.Auth.Logout)
			})
		}

		// Public supplier-fill surface, scoped by the opaque token only
		if handlers.Supplier != nil {
			r.Route("/supplier/{token}", func(sr chi.Router) {
				sr.Get("/", handlers.Supplier.GetSupplierRequest)
				sr.Post("/", handlers.Supplier.SubmitSupplierData)
			})
		}

		if handlers.Auth == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			if handlers.User != nil {
				pr.Get("/users/me", handlers.User.GetCurrentUser)

				pr.Group(func(ur chi.Router) {
					ur.Use(rbac.RequireManageUsers())
					ur.Get("/users", handlers.User.ListUsers)
					ur.Post("/users", handlers.User.CreateUser)
					ur.Patch("/users/{id}", handlers.User.UpdateUser)
				})
			}

			if handlers.Event != nil {
				pr.Route("/events", func(er chi.Router) {
					er.Get("/", handlers.Event.ListEvents)
					er.Get("/{id}", handlers.Event.GetEvent)

					er.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManageEvents())
						mr.Post("/", handlers.Event.CreateEvent)
						mr.Patch("/{id}", handlers.Event.UpdateEvent)
					})
				})
			}

			if handlers.Request != nil {
				pr.Route("/payment-requests", func(er chi.Router) {
					er.Get("/", handlers.Request.ListRequests)
					er.Get("/{id}", handlers.Request.GetRequest)

					er.Group(func(cr chi.Router) {
						cr.Use(rbac.RequireCreateRequest())
						cr.Post("/", handlers.Request.CreateRequest)
					})

					er.Group(func(cr chi.Router) {
						cr.Use(rbac.RequireConfirmSupplierData())
						cr.Post("/{id}/confirm-data", handlers.Request.ConfirmData)
						cr.Post("/{id}/reject-data", handlers.Request.RejectData)
					})

					er.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireApproveRequest())
						mr.Post("/{id}/approve", handlers.Request.ApproveRequest)
					})

					er.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireRejectRequest())
						mr.Post("/{id}/reject", handlers.Request.RejectRequest)
					})

					er.Group(func(fr chi.Router) {
						fr.Use(rbac.RequirePayRequest())
						fr.Post("/{id}/pay", handlers.Request.PayRequest)
					})
				})
			}

			if handlers.Notification != nil {
				pr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/", handlers.Notification.ListNotifications)
					nr.Post("/read-all", handlers.Notification.MarkAllRead)
				})
			}

			if handlers.Report != nil {
				pr.Group(func(rr chi.Router) {
					rr.Use(rbac.RequireViewReports())
					rr.Get("/reports/payments.csv", handlers.Report.ExportCSV)
					rr.Get("/reports/payments.ics", handlers.Report.ExportCalendar)
				})
			}

			if handlers.Enrichment != nil {
				pr.Route("/ai", func(ar chi.Router) {
					ar.Post("/invoice-extraction", handlers.Enrichment.ExtractInvoice)
					ar.Post("/category-suggestion", handlers.Enrichment.SuggestCategory)
					ar.Get("/requests/{id}/risk", handlers.Enrichment.RiskCommentary)
					ar.Get("/summary", handlers.Enrichment.ExecutiveSummary)
				})
			}
		})
	})
}
