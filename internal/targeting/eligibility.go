package targeting

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
)

// Evaluator decides whether the current campaign applies to a request.
// Verdicts are never cached; callers re-evaluate against a freshly loaded
// campaign on every request.
type Evaluator struct {
	now func() time.Time
}

// NewEvaluator returns an evaluator using wall-clock time.
func NewEvaluator() *Evaluator {
	return &Evaluator{now: time.Now}
}

// NewEvaluatorAt returns an evaluator with an injected clock for tests.
func NewEvaluatorAt(now func() time.Time) *Evaluator {
	return &Evaluator{now: now}
}

// Active reports whether the campaign is active by status and date window.
// A malformed date bound is logged and skipped rather than failing the check.
func (e *Evaluator) Active(c *campaign.Campaign) bool {
	if c == nil || c.Status != campaign.StatusActive {
		return false
	}

	now := e.now()

	if c.StartDate != "" {
		if start, ok := parseDate(c.StartDate); ok && now.Before(start) {
			log.Info().Time("now", now).Time("start", start).Msg("campaign not started yet")
			return false
		}
	}

	if c.EndDate != "" {
		if end, ok := parseDate(c.EndDate); ok && now.After(end) {
			log.Info().Time("now", now).Time("end", end).Msg("campaign already ended")
			return false
		}
	}

	return true
}

// TargetingMatches reports whether the request headers satisfy all targeting
// rules. A campaign with no rules applies to everyone. Evaluation
// short-circuits on the first non-matching rule.
func (e *Evaluator) TargetingMatches(c *campaign.Campaign, headers Headers) bool {
	if c == nil || len(c.HeaderTargetRules) == 0 {
		log.Debug().Msg("no header targeting rules, allowing all traffic")
		return true
	}

	for _, rule := range c.HeaderTargetRules {
		if !MatchRule(rule, headers) {
			log.Info().
				Str("header", rule.HeaderName).
				Str("condition", rule.Condition).
				Msg("header targeting rule not matched")
			return false
		}
	}
	return true
}

// Eligible combines the activation-window check with targeting.
func (e *Evaluator) Eligible(c *campaign.Campaign, headers Headers) bool {
	return e.Active(c) && e.TargetingMatches(c, headers)
}

// parseDate accepts RFC3339 timestamps (including a trailing Z) and naive
// local timestamps without a zone.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, true
	}
	log.Warn().Str("date", s).Msg("invalid campaign date format, skipping bound")
	return time.Time{}, false
}
