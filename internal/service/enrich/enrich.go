// Package enrich is a pure, stateless transform that turns a raw campaign
// plus catalog data into the enriched document the query tools serve. It sits
// outside the eligibility/session core; the core only ever reads its output.
package enrich

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
)

var agentGroupPattern = regexp.MustCompile(`\((.*?)\)`)

// Campaign produces the enriched view of a campaign: detailed products with
// discount arithmetic applied, detailed discounts, and agent metadata.
// The inputs are not mutated.
func Campaign(c campaign.Campaign, products []campaign.Product, discounts []campaign.Discount) campaign.Campaign {
	out := c

	selectedDiscounts := filterDiscounts(discounts, c.DiscountIDs)

	if len(c.ProductIDs) > 0 {
		detailed := make([]campaign.DetailedProduct, 0, len(c.ProductIDs))
		byID := make(map[int64]campaign.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, id := range c.ProductIDs {
			p, ok := byID[id]
			if !ok {
				continue
			}
			detailed = append(detailed, detailProduct(p, selectedDiscounts))
		}
		out.DetailedProducts = detailed
	}

	if len(c.DiscountIDs) > 0 {
		detailed := make([]campaign.DetailedDiscount, 0, len(selectedDiscounts))
		for _, d := range selectedDiscounts {
			detailed = append(detailed, campaign.DetailedDiscount(d))
		}
		out.DetailedDiscounts = detailed
	}

	now := time.Now().UTC().Format(time.RFC3339)
	out.AgentMetadata = &campaign.AgentMetadata{
		CampaignType:    "dynamic_pricing",
		TargetAudience:  "ai_agents",
		DetectionMethod: "header_analysis",
		EligibleAgents:  ExtractAgentNames(c.HeaderTargetRules),
		CreatedAt:       now,
		LastUpdated:     now,
	}

	return out
}

// ApplyDiscount computes the discounted price and display percentage for one
// discount against an original price. Values follow the commerce API
// convention of negative amounts ("-30.0"); positive values are negated.
func ApplyDiscount(originalPrice float64, d campaign.Discount) (discounted, percentage float64) {
	value, err := strconv.ParseFloat(d.Value, 64)
	if err != nil {
		return originalPrice, 0
	}
	if value > 0 {
		value = -value
	}

	switch d.ValueType {
	case "percentage":
		percentage = math.Abs(value)
		discounted = originalPrice * (1 + value/100)
	case "fixed_amount":
		discounted = math.Max(0, originalPrice+value)
		if originalPrice > 0 {
			percentage = math.Abs(value / originalPrice * 100)
		}
	default:
		return originalPrice, 0
	}
	return round2(discounted), round2(percentage)
}

// ExtractAgentNames pulls AI agent names out of user-agent regex rules,
// looking for alternation groups like (ChatGPT|Claude|Bard).
func ExtractAgentNames(rules []campaign.TargetRule) []string {
	names := []string{}
	for _, rule := range rules {
		if strings.ToLower(rule.HeaderName) != "user-agent" || rule.Condition != campaign.CondMatches {
			continue
		}
		for _, group := range agentGroupPattern.FindAllStringSubmatch(rule.Value, -1) {
			for _, name := range strings.Split(group[1], "|") {
				if trimmed := strings.TrimSpace(name); trimmed != "" {
					names = append(names, trimmed)
				}
			}
		}
	}
	return names
}

func detailProduct(p campaign.Product, discounts []campaign.Discount) campaign.DetailedProduct {
	originalPrice, _ := strconv.ParseFloat(p.Price, 64)
	discountedPrice := originalPrice
	discountPercentage := 0.0

	for _, d := range discounts {
		discountedPrice, discountPercentage = ApplyDiscount(originalPrice, d)
	}

	return campaign.DetailedProduct{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		OriginalPrice:      originalPrice,
		DiscountedPrice:    round2(discountedPrice),
		DiscountPercentage: round2(discountPercentage),
		Vendor:             p.Vendor,
		ProductType:        p.ProductType,
		Handle:             p.Handle,
		Status:             p.Status,
		InventoryQuantity:  p.InventoryQuantity,
		ImageURL:           p.ImageURL,
	}
}

func filterDiscounts(discounts []campaign.Discount, ids []int64) []campaign.Discount {
	if len(ids) == 0 {
		return nil
	}
	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []campaign.Discount
	for _, d := range discounts {
		if _, ok := wanted[d.ID]; ok {
			out = append(out, d)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
