// Package catalog proxies product and discount listings from the commerce
// API for the admin frontend.
package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/service/shopify"
	"github.com/oidebrett/ai-pricing-txt-manager/pkg/utils"
)

// Handler lists catalog resources.
type Handler struct {
	catalog *shopify.Client
}

// New creates the catalog handler.
func New(catalog *shopify.Client) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes wires the catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.handleProducts)
	r.Get("/discounts", h.handleDiscounts)
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.GetProducts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch products")
		utils.RespondError(w, http.StatusBadGateway, "failed to fetch products")
		return
	}
	if products == nil {
		products = []campaign.Product{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string][]campaign.Product{"products": products})
}

func (h *Handler) handleDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.catalog.GetDiscounts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch discounts")
		utils.RespondError(w, http.StatusBadGateway, "failed to fetch discounts")
		return
	}
	if discounts == nil {
		discounts = []campaign.Discount{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string][]campaign.Discount{"discounts": discounts})
}
