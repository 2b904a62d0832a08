package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
)

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name           string
		price          float64
		discount       campaign.Discount
		wantPrice      float64
		wantPercentage float64
	}{
		{
			name:           "thirty percent off",
			price:          100.00,
			discount:       campaign.Discount{ValueType: "percentage", Value: "-30.0"},
			wantPrice:      70.00,
			wantPercentage: 30.0,
		},
		{
			name:           "positive value is normalized to a reduction",
			price:          100.00,
			discount:       campaign.Discount{ValueType: "percentage", Value: "30.0"},
			wantPrice:      70.00,
			wantPercentage: 30.0,
		},
		{
			name:           "percentage rounds to cents",
			price:          19.99,
			discount:       campaign.Discount{ValueType: "percentage", Value: "-15.0"},
			wantPrice:      16.99,
			wantPercentage: 15.0,
		},
		{
			name:           "fixed amount",
			price:          50.00,
			discount:       campaign.Discount{ValueType: "fixed_amount", Value: "-10.0"},
			wantPrice:      40.00,
			wantPercentage: 20.0,
		},
		{
			name:           "fixed amount never goes below zero",
			price:          5.00,
			discount:       campaign.Discount{ValueType: "fixed_amount", Value: "-10.0"},
			wantPrice:      0,
			wantPercentage: 200.0,
		},
		{
			name:           "unparseable value leaves price untouched",
			price:          80.00,
			discount:       campaign.Discount{ValueType: "percentage", Value: "lots"},
			wantPrice:      80.00,
			wantPercentage: 0,
		},
		{
			name:           "unknown value type leaves price untouched",
			price:          80.00,
			discount:       campaign.Discount{ValueType: "bogo", Value: "-30.0"},
			wantPrice:      80.00,
			wantPercentage: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotPrice, gotPercentage := ApplyDiscount(tc.price, tc.discount)
			assert.Equal(t, tc.wantPrice, gotPrice)
			assert.Equal(t, tc.wantPercentage, gotPercentage)
		})
	}
}

func TestExtractAgentNames(t *testing.T) {
	rules := []campaign.TargetRule{
		{HeaderName: "User-Agent", Condition: campaign.CondMatches, Value: `(ChatGPT|Claude|Bard)/\d+`},
		{HeaderName: "user-agent", Condition: campaign.CondContains, Value: "(Perplexity)"},
		{HeaderName: "x-agent", Condition: campaign.CondMatches, Value: "(Gemini)"},
	}

	names := ExtractAgentNames(rules)
	assert.Equal(t, []string{"ChatGPT", "Claude", "Bard"}, names)
}

func TestExtractAgentNamesNoMatches(t *testing.T) {
	assert.Empty(t, ExtractAgentNames(nil))
	assert.Empty(t, ExtractAgentNames([]campaign.TargetRule{
		{HeaderName: "user-agent", Condition: campaign.CondMatches, Value: "GPTBot"},
	}))
}

func TestCampaignEnrichment(t *testing.T) {
	c := campaign.Campaign{
		Name:        "AI Sale",
		Status:      campaign.StatusActive,
		ProductIDs:  []int64{1, 3},
		DiscountIDs: []int64{10},
		HeaderTargetRules: []campaign.TargetRule{
			{HeaderName: "user-agent", Condition: campaign.CondMatches, Value: "(ChatGPT|Claude)"},
		},
	}
	products := []campaign.Product{
		{ID: 1, Title: "Widget", Price: "100.00"},
		{ID: 2, Title: "Ignored", Price: "10.00"},
		{ID: 3, Title: "Gadget", Price: "19.99"},
	}
	discounts := []campaign.Discount{
		{ID: 10, Code: "AGENT30", ValueType: "percentage", Value: "-30.0"},
		{ID: 11, Code: "UNSELECTED", ValueType: "percentage", Value: "-50.0"},
	}

	enriched := Campaign(c, products, discounts)

	if assert.Len(t, enriched.DetailedProducts, 2) {
		widget := enriched.DetailedProducts[0]
		assert.Equal(t, int64(1), widget.ID)
		assert.Equal(t, 100.00, widget.OriginalPrice)
		assert.Equal(t, 70.00, widget.DiscountedPrice)
		assert.Equal(t, 30.0, widget.DiscountPercentage)

		gadget := enriched.DetailedProducts[1]
		assert.Equal(t, int64(3), gadget.ID)
		assert.Equal(t, 13.99, gadget.DiscountedPrice)
	}

	if assert.Len(t, enriched.DetailedDiscounts, 1) {
		assert.Equal(t, "AGENT30", enriched.DetailedDiscounts[0].Code)
	}

	if assert.NotNil(t, enriched.AgentMetadata) {
		assert.Equal(t, "dynamic_pricing", enriched.AgentMetadata.CampaignType)
		assert.Equal(t, []string{"ChatGPT", "Claude"}, enriched.AgentMetadata.EligibleAgents)
	}

	// Inputs are untouched.
	assert.Nil(t, c.DetailedProducts)
	assert.Nil(t, c.AgentMetadata)
}

func TestCampaignMissingProductSkipped(t *testing.T) {
	c := campaign.Campaign{ProductIDs: []int64{1, 99}}
	products := []campaign.Product{{ID: 1, Title: "Widget", Price: "10.00"}}

	enriched := Campaign(c, products, nil)
	if assert.Len(t, enriched.DetailedProducts, 1) {
		assert.Equal(t, int64(1), enriched.DetailedProducts[0].ID)
	}
}
