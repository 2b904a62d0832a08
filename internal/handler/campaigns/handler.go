// Package campaigns serves the admin campaign CRUD surface. The backend
// holds exactly one campaign document; create and update both overwrite it
// after enrichment.
package campaigns

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/service/enrich"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/service/shopify"
	"github.com/oidebrett/ai-pricing-txt-manager/pkg/utils"
)

// currentCampaignID is the fixed id of the single stored campaign.
const currentCampaignID = "current_campaign"

// Handler exposes campaign CRUD over HTTP.
type Handler struct {
	store   campaign.Store
	catalog *shopify.Client
}

// New creates the campaign handler.
func New(store campaign.Store, catalog *shopify.Client) *Handler {
	return &Handler{store: store, catalog: catalog}
}

// RegisterRoutes wires the campaign routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/campaigns", h.handleList)
	r.Post("/campaigns", h.handleCreate)
	r.Get("/campaigns/{campaignID}", h.handleGet)
	r.Put("/campaigns/{campaignID}", h.handleUpdate)
	r.Delete("/campaigns/{campaignID}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	c, found, err := h.store.Load()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load campaign")
		return
	}

	campaigns := []campaign.Campaign{}
	if found {
		campaigns = append(campaigns, c)
	}
	utils.RespondJSON(w, http.StatusOK, map[string][]campaign.Campaign{"campaigns": campaigns})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, found, err := h.store.Load()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load campaign")
		return
	}
	if !found {
		utils.RespondError(w, http.StatusNotFound, "Campaign not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var c campaign.Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}

	enriched := h.enrich(r, c)
	now := time.Now().UTC().Format(time.RFC3339)
	enriched.ID = currentCampaignID
	enriched.CreatedAt = now
	enriched.UpdatedAt = now

	if err := h.store.Save(enriched); err != nil {
		log.Error().Err(err).Msg("failed to save campaign")
		utils.RespondError(w, http.StatusInternalServerError, "failed to save campaign")
		return
	}
	utils.RespondJSON(w, http.StatusOK, enriched)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var c campaign.Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The path id is accepted but ignored; there is only one campaign.
	_ = chi.URLParam(r, "campaignID")

	existing, found, err := h.store.Load()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load campaign")
		return
	}
	if !found {
		utils.RespondError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	enriched := h.enrich(r, c)
	enriched.ID = currentCampaignID
	enriched.CreatedAt = existing.CreatedAt
	if enriched.CreatedAt == "" {
		enriched.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	enriched.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := h.store.Save(enriched); err != nil {
		log.Error().Err(err).Msg("failed to save campaign")
		utils.RespondError(w, http.StatusInternalServerError, "failed to save campaign")
		return
	}
	utils.RespondJSON(w, http.StatusOK, enriched)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	_, found, err := h.store.Load()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load campaign")
		return
	}
	if !found {
		utils.RespondError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	if err := h.store.Delete(); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete campaign")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// enrich fetches catalog data and applies the pricing transform. Catalog
// failures degrade to an un-enriched save rather than rejecting the write.
func (h *Handler) enrich(r *http.Request, c campaign.Campaign) campaign.Campaign {
	ctx := r.Context()

	products, err := h.catalog.GetProducts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch products for enrichment")
	}
	discounts, err := h.catalog.GetDiscounts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch discounts for enrichment")
	}

	return enrich.Campaign(c, products, discounts)
}
