package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"labelflow/internal/auth"
	emailcontroller "labelflow/internal/email/controller"
	expensecontroller "labelflow/internal/expense/controller"
	ordercontroller "labelflow/internal/order/controller"
)

type Controllers struct {
	Orders    *ordercontroller.OrderController
	Stages    *ordercontroller.StageController
	Expenses  *expensecontroller.ExpenseController
	SendEmail *emailcontroller.SendEmailController
}

type RouterConfig struct {
	JWTSecret   []byte
	EmailSecret string
}

func NewRouter(c Controllers, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireIdentity(cfg.JWTSecret, logger))

			r.Route("/orders", func(r chi.Router) {
				ordercontroller.Mount(r, c.Orders, c.Stages)
			})
			r.Route("/expenses", c.Expenses.Mount)
		})

		r.With(auth.RequireSharedSecret(cfg.EmailSecret, logger)).Post("/send-email", c.SendEmail.SendEmail)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
