package campaign

// Campaign status values.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Targeting rule conditions.
const (
	CondEquals     = "equals"
	CondContains   = "contains"
	CondStartsWith = "startsWith"
	CondEndsWith   = "endsWith"
	CondMatches    = "matches"
	CondExists     = "exists"
	CondNotExists  = "notExists"
)

// TargetRule is a single header-based predicate. Rules are stateless; a
// campaign's rules are AND-aggregated during eligibility evaluation.
type TargetRule struct {
	HeaderName string `json:"header_name"`
	Condition  string `json:"condition"`
	Value      string `json:"value,omitempty"`
	Negate     bool   `json:"negate,omitempty"`
}

// Product is a raw storefront product as returned by the commerce API.
type Product struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	Price             string `json:"price"`
	Vendor            string `json:"vendor,omitempty"`
	ProductType       string `json:"product_type,omitempty"`
	Handle            string `json:"handle,omitempty"`
	Status            string `json:"status,omitempty"`
	InventoryQuantity int    `json:"inventory_quantity,omitempty"`
	ImageURL          string `json:"image_url,omitempty"`
}

// Discount is a raw discount code joined with its price rule.
// Value follows the commerce API convention: "-30.0" means 30% off for
// percentage rules, or 30 currency units off for fixed_amount rules.
type Discount struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	ValueType  string `json:"value_type"`
	Value      string `json:"value"`
	Title      string `json:"title,omitempty"`
	StartsAt   string `json:"starts_at,omitempty"`
	EndsAt     string `json:"ends_at,omitempty"`
	UsageCount int    `json:"usage_count,omitempty"`
	TargetType string `json:"target_type,omitempty"`
}

// DetailedProduct is a product enriched with campaign pricing.
type DetailedProduct struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description,omitempty"`
	OriginalPrice      float64 `json:"original_price"`
	DiscountedPrice    float64 `json:"discounted_price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Vendor             string  `json:"vendor,omitempty"`
	ProductType        string  `json:"product_type,omitempty"`
	Handle             string  `json:"handle,omitempty"`
	Status             string  `json:"status,omitempty"`
	InventoryQuantity  int     `json:"inventory_quantity,omitempty"`
	ImageURL           string  `json:"image_url,omitempty"`
}

// DetailedDiscount mirrors Discount in the stored campaign document.
type DetailedDiscount struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	ValueType  string `json:"value_type"`
	Value      string `json:"value"`
	Title      string `json:"title,omitempty"`
	StartsAt   string `json:"starts_at,omitempty"`
	EndsAt     string `json:"ends_at,omitempty"`
	UsageCount int    `json:"usage_count,omitempty"`
	TargetType string `json:"target_type,omitempty"`
}

// AgentMetadata summarizes the campaign for AI-agent discovery.
type AgentMetadata struct {
	CampaignType    string   `json:"campaign_type"`
	TargetAudience  string   `json:"target_audience"`
	DetectionMethod string   `json:"detection_method"`
	EligibleAgents  []string `json:"eligible_agents"`
	CreatedAt       string   `json:"created_at"`
	LastUpdated     string   `json:"last_updated"`
}

// Campaign is the single pricing promotion. Dates are kept as strings so a
// malformed bound can be skipped at evaluation time instead of failing the
// whole document load.
type Campaign struct {
	ID                string             `json:"id,omitempty"`
	Name              string             `json:"name"`
	Description       string             `json:"description,omitempty"`
	StartDate         string             `json:"start_date,omitempty"`
	EndDate           string             `json:"end_date,omitempty"`
	Status            string             `json:"status"`
	ProductIDs        []int64            `json:"product_ids,omitempty"`
	DiscountIDs       []int64            `json:"discount_ids,omitempty"`
	HeaderTargetRules []TargetRule       `json:"header_target_rules,omitempty"`
	CreatedAt         string             `json:"created_at,omitempty"`
	UpdatedAt         string             `json:"updated_at,omitempty"`
	DetailedProducts  []DetailedProduct  `json:"detailed_products,omitempty"`
	DetailedDiscounts []DetailedDiscount `json:"detailed_discounts,omitempty"`
	AgentMetadata     *AgentMetadata     `json:"ai_agent_metadata,omitempty"`
}
