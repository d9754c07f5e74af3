package controller

import "github.com/go-chi/chi/v5"

// Mount registers the order routes on r, which is expected to be mounted
// under /api/orders behind the identity middleware.
func Mount(r chi.Router, orders *OrderController, stages *StageController) {
	r.Post("/", orders.Create)
	r.Get("/", orders.List)

	r.Route("/{orderId}", func(r chi.Router) {
		r.Get("/", orders.Get)
		r.Patch("/", orders.Update)
		r.Delete("/", orders.Delete)
		r.Post("/status", orders.MoveStatus)
		r.Post("/attachments", orders.UploadAttachments)

		r.Put("/stages/{kind}", stages.Save)
		r.Get("/stages/{kind}/email", stages.Preview)
		r.Post("/stages/{kind}/email", stages.Send)
		r.Get("/emails", stages.ListEmails)
	})
}
