package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/observability"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/targeting"
)

const noPricingMessage = "We don't have any special pricing available for you at this time."

// Tool names.
const (
	toolGetProducts = "get-products"
	toolGetDiscount = "get-discount"
)

// Invoker executes tool calls against the current campaign. Every call
// re-loads the campaign and re-evaluates eligibility; nothing is cached
// between requests.
type Invoker struct {
	store      campaign.Store
	evaluator  *targeting.Evaluator
	events     *EventLog
	dispatcher *Dispatcher
	registry   *Registry
}

// NewInvoker wires the tool invoker to its collaborators.
func NewInvoker(store campaign.Store, evaluator *targeting.Evaluator, events *EventLog, dispatcher *Dispatcher, registry *Registry) *Invoker {
	return &Invoker{
		store:      store,
		evaluator:  evaluator,
		events:     events,
		dispatcher: dispatcher,
		registry:   registry,
	}
}

// ListTools returns the two supported tools.
func (inv *Invoker) ListTools() []Tool {
	return []Tool{
		{
			Name:        toolGetProducts,
			Description: "Get all products in the active campaign",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		},
		{
			Name:        toolGetDiscount,
			Description: "Get discount code for a specific product",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"product_id": map[string]any{
						"type":        "string",
						"description": "ID of the product to get discount for",
					},
				},
				"required": []string{"product_id"},
			},
		},
	}
}

// Call gates the invocation on campaign eligibility, then dispatches on the
// tool name. Callers always receive a well-formed result; internal faults
// degrade to the denial payload rather than terminating the session.
func (inv *Invoker) Call(sessionID string, requestID json.RawMessage, name string, args map[string]any, headers targeting.Headers) CallToolResult {
	c, found, err := inv.store.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load campaign")
		found = false
	}

	var current *campaign.Campaign
	if found {
		current = &c
	}

	active := inv.evaluator.Active(current)
	matched := inv.evaluator.TargetingMatches(current, headers)
	log.Info().Bool("campaign_active", active).Bool("targeting_matched", matched).Msg("eligibility evaluated")

	if !active || !matched {
		reason := "inactive campaign"
		if active {
			reason = "targeting mismatch"
		}
		inv.scheduleNotifications(sessionID,
			logNotification(requestID, fmt.Sprintf("Pricing request denied: %s", reason)))
		return textResult(map[string]string{"message": noPricingMessage})
	}

	switch name {
	case toolGetProducts:
		return inv.getProducts(current, sessionID, requestID)
	case toolGetDiscount:
		return inv.getDiscount(current, sessionID, requestID, args)
	default:
		return textResult(map[string]string{"error": fmt.Sprintf("Unknown tool: %s", name)})
	}
}

func (inv *Invoker) getProducts(c *campaign.Campaign, sessionID string, requestID json.RawMessage) CallToolResult {
	products := c.DetailedProducts
	if products == nil {
		products = []campaign.DetailedProduct{}
	}

	inv.scheduleNotifications(sessionID,
		logNotification(requestID, fmt.Sprintf("Retrieved %d products from active campaign", len(products))),
		resourceNotification("http:///products"))

	return textResult(map[string]any{"products": products})
}

func (inv *Invoker) getDiscount(c *campaign.Campaign, sessionID string, requestID json.RawMessage, args map[string]any) CallToolResult {
	productID := stringArg(args, "product_id")
	if productID == "" {
		return textResult(map[string]string{"error": "product_id is required"})
	}

	var product *campaign.DetailedProduct
	for i := range c.DetailedProducts {
		if strconv.FormatInt(c.DetailedProducts[i].ID, 10) == productID {
			product = &c.DetailedProducts[i]
			break
		}
	}
	if product == nil {
		return textResult(map[string]string{"error": "Product not found"})
	}

	if len(c.DetailedDiscounts) == 0 {
		return textResult(map[string]string{"error": "No discount available"})
	}
	// Single-discount-per-response policy: the first available code applies.
	discount := c.DetailedDiscounts[0]

	inv.scheduleNotifications(sessionID,
		logNotification(requestID, fmt.Sprintf("Retrieved discount for product %s: %s", productID, discount.Code)),
		resourceNotification("http:///discount/"+productID))

	return textResult(map[string]any{
		"product":             product,
		"discount_code":       discount.Code,
		"discount_percentage": product.DiscountPercentage,
	})
}

func logNotification(requestID json.RawMessage, message string) Notification {
	return Notification{
		JSONRPC: "2.0",
		Method:  "notifications/message",
		Params: LogMessageParams{
			Level:            "info",
			Logger:           "pricing_service",
			Data:             message,
			RelatedRequestID: requestID,
		},
	}
}

func resourceNotification(uri string) Notification {
	return Notification{
		JSONRPC: "2.0",
		Method:  "notifications/resources/updated",
		Params:  ResourceUpdatedParams{URI: uri},
	}
}

// scheduleNotifications runs one background task that appends and delivers an
// invocation's notifications in the order given. The request path does not
// wait for it. A single task per invocation keeps the event-log sequence
// matching the notification order.
func (inv *Invoker) scheduleNotifications(sessionID string, notifications ...Notification) {
	payloads := make([][]byte, 0, len(notifications))
	for _, n := range notifications {
		payload, err := json.Marshal(n)
		if err != nil {
			log.Error().Err(err).Msg("failed to encode notification")
			continue
		}
		payloads = append(payloads, payload)
	}
	if len(payloads) == 0 {
		return
	}

	scheduled := inv.dispatcher.Schedule(func(ctx context.Context) {
		if ctx.Err() != nil {
			return
		}
		for _, payload := range payloads {
			id := inv.events.Append(sessionID, payload)
			transport, ok := inv.registry.Get(sessionID)
			if !ok {
				continue
			}
			if transport.Send(Event{ID: id, Payload: payload}) {
				observability.NotificationsTotal.WithLabelValues("delivered").Inc()
			} else {
				observability.NotificationsTotal.WithLabelValues("stored").Inc()
				log.Debug().Str("session_id", sessionID).Msg("no live stream for notification, stored for replay")
			}
		}
	})
	if !scheduled {
		observability.NotificationsTotal.WithLabelValues("dropped").Add(float64(len(payloads)))
	}
}

func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; ids are integral.
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}
