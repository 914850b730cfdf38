package server

import (
	"net/http"

	ordercontroller "evdms/internal/order/controller"
	paymentcontroller "evdms/internal/payment/controller"
	quotecontroller "evdms/internal/quote/controller"
	"evdms/internal/server/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(
	quoteCtrl *quotecontroller.QuoteController,
	orderCtrl *ordercontroller.OrderController,
	paymentCtrl *paymentcontroller.PaymentController,
	jwtSecret string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(jwtSecret, logger))

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/", quoteCtrl.Create)
			r.Get("/pending", quoteCtrl.ListPending)
			r.Get("/{quoteId}", quoteCtrl.Get)
			r.Post("/{quoteId}/submit", quoteCtrl.Submit)
			r.Post("/{quoteId}/inventory-check", quoteCtrl.CheckInventory)
			r.Post("/{quoteId}/approve", quoteCtrl.Approve)
			r.Post("/{quoteId}/reject", quoteCtrl.Reject)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderCtrl.Create)
			r.Get("/{orderId}", orderCtrl.Get)
			r.Post("/{orderId}/approve", orderCtrl.Approve)
			r.Post("/{orderId}/reject", orderCtrl.Reject)
			r.Post("/{orderId}/deliver", orderCtrl.Deliver)
			r.Post("/{orderId}/cancel", orderCtrl.Cancel)
			r.Get("/{orderId}/ledger", paymentCtrl.OrderLedger)
			r.Get("/{orderId}/payments", paymentCtrl.ListPayments)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", paymentCtrl.RecordPayment)
		})

		r.Route("/installment-plans", func(r chi.Router) {
			r.Post("/preview", paymentCtrl.PreviewPlan)
			r.Post("/", paymentCtrl.CreatePlan)
			r.Get("/{planId}", paymentCtrl.GetPlan)
			r.Post("/{planId}/installments/{installmentNumber}/pay", paymentCtrl.PayInstallment)
		})
	})

	return r
}
