package campaigns

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/service/shopify"
)

func newCatalogServer(t *testing.T) *shopify.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[
			{"id":1,"title":"Widget","status":"active","variants":[{"price":"100.00","inventory_quantity":5}]}
		]}`))
	})
	mux.HandleFunc("/price_rules.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price_rules":[{"id":10,"value_type":"percentage","value":"-30.0","title":"AI Sale"}]}`))
	})
	mux.HandleFunc("/price_rules/10/discount_codes.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"discount_codes":[{"id":100,"code":"AGENT30"}]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return shopify.NewWithBaseURL(srv.URL, "test-token")
}

func newTestRouter(t *testing.T) (chi.Router, campaign.Store) {
	t.Helper()

	store, err := campaign.NewFileStore(t.TempDir())
	require.NoError(t, err)

	r := chi.NewRouter()
	New(store, newCatalogServer(t)).RegisterRoutes(r)
	return r, store
}

func TestCreateCampaign(t *testing.T) {
	router, store := newTestRouter(t)

	body := `{
		"name": "AI Summer Sale",
		"status": "active",
		"product_ids": [1],
		"discount_ids": [100],
		"header_target_rules": [
			{"header_name": "user-agent", "condition": "matches", "value": "(ChatGPT|Claude)"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var created campaign.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "current_campaign", created.ID)
	assert.NotEmpty(t, created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	require.Len(t, created.DetailedProducts, 1)
	assert.Equal(t, 70.00, created.DetailedProducts[0].DiscountedPrice)
	require.Len(t, created.DetailedDiscounts, 1)
	assert.Equal(t, "AGENT30", created.DetailedDiscounts[0].Code)
	require.NotNil(t, created.AgentMetadata)
	assert.Equal(t, []string{"ChatGPT", "Claude"}, created.AgentMetadata.EligibleAgents)

	stored, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "AI Summer Sale", stored.Name)
}

func TestCreateCampaignRequiresName(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(`{"status":"active"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCampaign(t *testing.T) {
	router, store := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/campaigns/current_campaign", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, store.Save(campaign.Campaign{ID: "current_campaign", Name: "Stored", Status: campaign.StatusActive}))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got campaign.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Stored", got.Name)
}

func TestListCampaigns(t *testing.T) {
	router, store := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campaigns", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"campaigns":[]}`, rec.Body.String())

	require.NoError(t, store.Save(campaign.Campaign{Name: "One", Status: campaign.StatusDraft}))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campaigns", nil))

	var resp struct {
		Campaigns []campaign.Campaign `json:"campaigns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Campaigns, 1)
	assert.Equal(t, "One", resp.Campaigns[0].Name)
}

func TestUpdateCampaignPreservesCreatedAt(t *testing.T) {
	router, store := newTestRouter(t)

	require.NoError(t, store.Save(campaign.Campaign{
		ID:        "current_campaign",
		Name:      "Original",
		Status:    campaign.StatusDraft,
		CreatedAt: "2025-01-01T00:00:00Z",
	}))

	body := `{"name":"Updated","status":"active","product_ids":[1]}`
	req := httptest.NewRequest(http.MethodPut, "/campaigns/current_campaign", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var updated campaign.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Updated", updated.Name)
	assert.Equal(t, "2025-01-01T00:00:00Z", updated.CreatedAt)
	assert.NotEqual(t, updated.CreatedAt, updated.UpdatedAt)
	require.Len(t, updated.DetailedProducts, 1)
}

func TestUpdateMissingCampaign(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"name":"Orphan","status":"active"}`
	req := httptest.NewRequest(http.MethodPut, "/campaigns/current_campaign", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Campaign not found"}`, rec.Body.String())
}

func TestDeleteMissingCampaign(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/campaigns/current_campaign", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Campaign not found"}`, rec.Body.String())
}

func TestDeleteCampaign(t *testing.T) {
	router, store := newTestRouter(t)
	require.NoError(t, store.Save(campaign.Campaign{Name: "Doomed", Status: campaign.StatusActive}))

	req := httptest.NewRequest(http.MethodDelete, "/campaigns/current_campaign", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateDegradesWhenCatalogUnavailable(t *testing.T) {
	store, err := campaign.NewFileStore(t.TempDir())
	require.NoError(t, err)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)

	r := chi.NewRouter()
	New(store, shopify.NewWithBaseURL(down.URL, "t")).RegisterRoutes(r)

	body := `{"name":"Degraded","status":"active","product_ids":[1]}`
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var created campaign.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Degraded", created.Name)
	assert.Empty(t, created.DetailedProducts)
}
