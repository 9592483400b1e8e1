package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/aada-api/internal/application/auth"
	"github.com/aada-api/internal/application/billing"
	"github.com/aada-api/internal/application/document"
	"github.com/aada-api/internal/application/externship"
	"github.com/aada-api/internal/application/notification"
	"github.com/aada-api/internal/application/payment"
	"github.com/aada-api/internal/application/session"
	"github.com/aada-api/internal/application/student"
	"github.com/aada-api/internal/application/user"
	"github.com/aada-api/internal/config"
	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/infrastructure/localfs"
	"github.com/aada-api/internal/transport/http/handler"
	appmiddleware "github.com/aada-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router. ctx bounds the
// background work of the rate limiter.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)
	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	repos := deps.Repos
	userSvc := user.NewService(user.ServiceDeps{UserRepo: repos.Users, StudentRepo: repos.Students})
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo:     repos.Sessions,
		UserRepo:        repos.Users,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: time.Duration(cfg.RefreshTokenExpiryDays) * 24 * time.Hour,
	})
	authSvc := auth.NewService(auth.ServiceDeps{VerificationRepo: repos.Verifications, UserRepo: repos.Users, Mailer: deps.Mailer})
	studentSvc := student.NewService(repos.Students)
	paymentSvc := payment.NewService(payment.ServiceDeps{StudentRepo: repos.Students, PlanRepo: repos.PaymentPlans, InvoiceRepo: repos.Invoices})
	externshipSvc := externship.NewService(externship.ServiceDeps{StudentRepo: repos.Students, ExternshipRepo: repos.Externships})
	notifSvc := notification.NewService(notification.ServiceDeps{NotificationRepo: repos.Notifications, StudentRepo: repos.Students, Push: deps.Push, PushTimeout: cfg.PushTimeout})
	documentSvc := document.NewService(document.ServiceDeps{DocumentRepo: repos.Documents, Store: deps.Store, DownloadTTL: cfg.DownloadURLTTL})

	authH := handler.NewAuthHandler(userSvc, sessionSvc, authSvc)
	studentH := handler.NewStudentHandler(studentSvc, paymentSvc, notifSvc)
	externshipH := handler.NewExternshipHandler(externshipSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	documentH := handler.NewDocumentHandler(documentSvc)

	billingSvc := billing.NewService(billing.ServiceDeps{
		PlanRepo:    repos.PaymentPlans,
		InvoiceRepo: repos.Invoices,
		StudentRepo: repos.Students,
		Gateway:     deps.Billing,
	})
	paymentH := handler.NewPaymentHandler(paymentSvc, billingSvc)

	if deps.LocalStore != nil {
		r.Get(localfs.RoutePrefix+"*", handler.NewStorageHandler(deps.LocalStore).Serve)
	}
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health", handler.Health)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/refresh", authH.Refresh)
		r.With(sensitiveRL.Limit).Post("/auth/password-reset/{action}", authH.PasswordReset)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", authH.Me)
			r.Post("/auth/logout", authH.Logout)
			r.Post("/auth/verify-email/{action}", authH.VerifyEmail)

			r.Get("/students/{id}", studentH.Get)
			r.Post("/students/{id}/fcm-token", studentH.SetDeviceToken)
			r.Get("/students/{id}/invoices", studentH.ListInvoices)
			r.Get("/students/{id}/notifications", studentH.ListNotifications)
			r.Put("/notifications/{id}", notifH.MarkRead)
			r.Get("/payments", paymentH.ListPlans)
			r.Get("/externships", externshipH.Get)

			r.Post("/documents/upload", documentH.Upload)
			r.Get("/documents", documentH.List)
			r.Get("/documents/{id}", documentH.Get)
			r.Get("/documents/{id}/download", documentH.Download)
			r.Delete("/documents/{id}", documentH.Delete)

			// Staff routes
			r.With(appmiddleware.RequireRole(domain.RoleAdmin, domain.RoleInstructor)).Get("/students", studentH.List)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/documents/pending", documentH.ListPending)
				r.Put("/documents/{id}/verify", documentH.Verify)
				r.Put("/externships/{student_id}", externshipH.Set)
				r.Post("/invoices/{id}/confirm", paymentH.ConfirmPaid)
				if deps.Billing != nil {
					r.Post("/payments/{plan_id}/invoice", paymentH.IssueInvoice)
				}
			})
		})
	})

	return r
}
