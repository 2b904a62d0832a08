package targeting

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
)

// Headers is the normalized request header map used for targeting: keys are
// lower-cased once at the transport boundary, values are left as sent.
type Headers map[string]string

// NormalizeHeaders folds an http.Header into a Headers map, keeping the first
// value of each header.
func NormalizeHeaders(h http.Header) Headers {
	out := make(Headers, len(h))
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		out[strings.ToLower(name)] = values[0]
	}
	return out
}

// MatchRule reports whether a single targeting rule matches the header set.
// Header lookup is case-insensitive. Negation is applied last. An unknown
// condition or an invalid regex never matches; both are logged and degraded
// rather than surfaced, so a broken rule can deny but never grant.
func MatchRule(rule campaign.TargetRule, headers Headers) bool {
	name := strings.ToLower(rule.HeaderName)
	value, present := headers[name]

	var result bool
	switch rule.Condition {
	case campaign.CondExists:
		result = present
	case campaign.CondNotExists:
		result = !present
	default:
		if !present {
			result = false
			break
		}
		switch rule.Condition {
		case campaign.CondEquals:
			result = value == rule.Value
		case campaign.CondContains:
			result = strings.Contains(value, rule.Value)
		case campaign.CondStartsWith:
			result = strings.HasPrefix(value, rule.Value)
		case campaign.CondEndsWith:
			result = strings.HasSuffix(value, rule.Value)
		case campaign.CondMatches:
			re, err := regexp.Compile(rule.Value)
			if err != nil {
				log.Warn().Str("pattern", rule.Value).Err(err).Msg("invalid regex pattern in targeting rule")
				result = false
				break
			}
			result = re.MatchString(value)
		default:
			log.Warn().Str("condition", rule.Condition).Msg("unknown targeting rule condition")
			result = false
		}
	}

	if rule.Negate {
		return !result
	}
	return result
}
