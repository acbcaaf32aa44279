package main

import (
	"net/http"

	"github.com/workbridge/backend/internal/dashboard"
	"github.com/workbridge/backend/internal/handlers"
)

// RegisterMarketplaceRoutes adds the authenticated marketplace endpoints to
// the given mux. Middleware chain: JWTAuth -> handler; the middleware resolves
// the caller's profile once and the handlers read it from context.
func RegisterMarketplaceRoutes(
	mux *http.ServeMux,
	authMW func(http.Handler) http.Handler,
	projects *handlers.ProjectHandler,
	proposals *handlers.ProposalHandler,
	contracts *handlers.ContractHandler,
	overview *dashboard.Handler,
) {
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Profile overview
	mux.Handle("GET /api/v1/me", authed(overview.Me))

	// Projects & categories
	mux.Handle("POST /api/v1/projects", authed(projects.CreateProject))
	mux.Handle("GET /api/v1/projects", authed(projects.ListProjects))
	mux.Handle("GET /api/v1/projects/{id}", authed(projects.GetProject))
	mux.Handle("GET /api/v1/categories", authed(projects.ListCategories))

	// Proposals & hiring
	mux.Handle("POST /api/v1/projects/{id}/proposals", authed(proposals.SubmitProposal))
	mux.Handle("GET /api/v1/projects/{id}/proposals", authed(proposals.ListProposals))
	mux.Handle("POST /api/v1/projects/{id}/hire", authed(proposals.HireProposal))

	// Contracts & milestones
	mux.Handle("GET /api/v1/contracts", authed(contracts.ListContracts))
	mux.Handle("GET /api/v1/contracts/{id}", authed(contracts.GetContract))
	mux.Handle("POST /api/v1/contracts/{id}/milestones", authed(contracts.CreateMilestone))
	mux.Handle("POST /api/v1/milestones/{id}/fund", authed(contracts.FundMilestone))
	mux.Handle("POST /api/v1/milestones/{id}/submit", authed(contracts.SubmitMilestone))
	mux.Handle("POST /api/v1/milestones/{id}/release", authed(contracts.ReleaseMilestone))
}
