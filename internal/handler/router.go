package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/handler/campaigns"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/handler/catalog"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/mcp"
	middlewarePkg "github.com/oidebrett/ai-pricing-txt-manager/internal/middleware"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/observability"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/service/shopify"
	"github.com/oidebrett/ai-pricing-txt-manager/pkg/utils"
)

// NewRouter wires HTTP routes to core services: the agent-facing MCP
// endpoint, the admin campaign API, and operational routes.
func NewRouter(store campaign.Store, catalogClient *shopify.Client, mcpHandler *mcp.Handler, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.Measure)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigin))

	mcpHandler.RegisterRoutes(r)

	campaignHandler := campaigns.New(store, catalogClient)
	catalogHandler := catalog.New(catalogClient)

	r.Route("/routes/api", func(api chi.Router) {
		campaignHandler.RegisterRoutes(api)
		catalogHandler.RegisterRoutes(api)

		api.Get("/test", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status":  "ok",
				"message": "API connection working",
			})
		})
	})

	r.Get("/_healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", observability.MetricsHandler())

	return r
}
