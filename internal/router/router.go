package router

import (
	"net/http"

	"github.com/workbridge/backend/internal/auth"
	"github.com/workbridge/backend/internal/handlers"
)

// New returns an http.Handler for the public API surface under /api/v1:
// auth endpoints and the payment-gateway endpoint. The invoice endpoint does
// its own method switch (POST create, GET status, otherwise 405).
func New(authHandler *auth.Handler, invoiceHandler *handlers.InvoiceHandler) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"
	mux.HandleFunc(base+"/auth/register", authHandler.Register)
	mux.HandleFunc(base+"/auth/login", authHandler.Login)
	mux.HandleFunc(base+"/invoices", invoiceHandler.Invoices)
	return mux
}
