// Package shopify is a minimal Shopify Admin REST client covering the two
// resources the backend needs: products and discount codes.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/config"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
)

// Client calls the Shopify Admin API for one shop.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// New builds a client from validated configuration.
func New(cfg config.ShopifyConfig) *Client {
	return &Client{
		baseURL:     fmt.Sprintf("https://%s/admin/api/%s", cfg.ShopURL, cfg.APIVersion),
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithBaseURL builds a client against an explicit base URL, used by tests.
func NewWithBaseURL(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type productsResponse struct {
	Products []struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		BodyHTML    string `json:"body_html"`
		Vendor      string `json:"vendor"`
		ProductType string `json:"product_type"`
		Handle      string `json:"handle"`
		Status      string `json:"status"`
		Variants    []struct {
			Price             string `json:"price"`
			InventoryQuantity int    `json:"inventory_quantity"`
		} `json:"variants"`
		Image *struct {
			Src string `json:"src"`
		} `json:"image"`
	} `json:"products"`
}

type priceRulesResponse struct {
	PriceRules []struct {
		ID         int64  `json:"id"`
		ValueType  string `json:"value_type"`
		Value      string `json:"value"`
		Title      string `json:"title"`
		StartsAt   string `json:"starts_at"`
		EndsAt     string `json:"ends_at"`
		TargetType string `json:"target_type"`
	} `json:"price_rules"`
}

type discountCodesResponse struct {
	DiscountCodes []struct {
		ID         int64  `json:"id"`
		Code       string `json:"code"`
		UsageCount int    `json:"usage_count"`
	} `json:"discount_codes"`
}

// GetProducts lists the shop's products, flattening the main variant price
// and the primary image.
func (c *Client) GetProducts(ctx context.Context) ([]campaign.Product, error) {
	var resp productsResponse
	if err := c.get(ctx, "/products.json", &resp); err != nil {
		return nil, err
	}

	products := make([]campaign.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		product := campaign.Product{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.BodyHTML,
			Price:       "0.00",
			Vendor:      p.Vendor,
			ProductType: p.ProductType,
			Handle:      p.Handle,
			Status:      p.Status,
		}
		if len(p.Variants) > 0 {
			product.Price = p.Variants[0].Price
			product.InventoryQuantity = p.Variants[0].InventoryQuantity
		}
		if p.Image != nil {
			product.ImageURL = p.Image.Src
		}
		products = append(products, product)
	}
	return products, nil
}

// GetDiscounts lists discount codes joined with their price rules.
func (c *Client) GetDiscounts(ctx context.Context) ([]campaign.Discount, error) {
	var rules priceRulesResponse
	if err := c.get(ctx, "/price_rules.json", &rules); err != nil {
		return nil, err
	}

	var discounts []campaign.Discount
	for _, rule := range rules.PriceRules {
		var codes discountCodesResponse
		if err := c.get(ctx, fmt.Sprintf("/price_rules/%d/discount_codes.json", rule.ID), &codes); err != nil {
			return nil, err
		}
		for _, code := range codes.DiscountCodes {
			discounts = append(discounts, campaign.Discount{
				ID:         code.ID,
				Code:       code.Code,
				ValueType:  rule.ValueType,
				Value:      rule.Value,
				Title:      rule.Title,
				StartsAt:   rule.StartsAt,
				EndsAt:     rule.EndsAt,
				UsageCount: code.UsageCount,
				TargetType: rule.TargetType,
			})
		}
	}
	return discounts, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("shopify request %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode shopify response %s: %w", path, err)
	}
	return nil
}
