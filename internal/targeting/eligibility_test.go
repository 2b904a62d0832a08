package targeting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEligible_Scenarios(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluatorAt(fixedClock(now))

	tests := []struct {
		name     string
		campaign *campaign.Campaign
		headers  Headers
		want     bool
	}{
		{
			name:     "nil campaign",
			campaign: nil,
			want:     false,
		},
		{
			name:     "draft status",
			campaign: &campaign.Campaign{Status: campaign.StatusDraft},
			want:     false,
		},
		{
			name:     "inactive status",
			campaign: &campaign.Campaign{Status: campaign.StatusInactive},
			want:     false,
		},
		{
			name:     "active with no dates and no rules",
			campaign: &campaign.Campaign{Status: campaign.StatusActive},
			want:     true,
		},
		{
			name: "start date one hour in the future",
			campaign: &campaign.Campaign{
				Status:    campaign.StatusActive,
				StartDate: now.Add(time.Hour).Format(time.RFC3339),
			},
			want: false,
		},
		{
			name: "end date in the past",
			campaign: &campaign.Campaign{
				Status:  campaign.StatusActive,
				EndDate: now.Add(-time.Hour).Format(time.RFC3339),
			},
			want: false,
		},
		{
			name: "inside window",
			campaign: &campaign.Campaign{
				Status:    campaign.StatusActive,
				StartDate: now.Add(-time.Hour).Format(time.RFC3339),
				EndDate:   now.Add(time.Hour).Format(time.RFC3339),
			},
			want: true,
		},
		{
			name: "malformed start date is skipped",
			campaign: &campaign.Campaign{
				Status:    campaign.StatusActive,
				StartDate: "not-a-date",
			},
			want: true,
		},
		{
			name: "trailing Z accepted",
			campaign: &campaign.Campaign{
				Status:  campaign.StatusActive,
				EndDate: "2025-06-15T13:00:00Z",
			},
			want: true,
		},
		{
			name: "all rules match",
			campaign: &campaign.Campaign{
				Status: campaign.StatusActive,
				HeaderTargetRules: []campaign.TargetRule{
					{HeaderName: "user-agent", Condition: "contains", Value: "ChatGPT"},
					{HeaderName: "accept", Condition: "exists"},
				},
			},
			headers: Headers{"user-agent": "Mozilla ChatGPT/2.0", "accept": "text/html"},
			want:    true,
		},
		{
			name: "one rule fails the AND",
			campaign: &campaign.Campaign{
				Status: campaign.StatusActive,
				HeaderTargetRules: []campaign.TargetRule{
					{HeaderName: "user-agent", Condition: "contains", Value: "ChatGPT"},
					{HeaderName: "x-api-tier", Condition: "exists"},
				},
			},
			headers: Headers{"user-agent": "Mozilla ChatGPT/2.0"},
			want:    false,
		},
		{
			name: "date window denies regardless of matching rules",
			campaign: &campaign.Campaign{
				Status:    campaign.StatusActive,
				StartDate: now.Add(time.Hour).Format(time.RFC3339),
				HeaderTargetRules: []campaign.TargetRule{
					{HeaderName: "user-agent", Condition: "exists"},
				},
			},
			headers: Headers{"user-agent": "anything"},
			want:    false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, eval.Eligible(tc.campaign, tc.headers))
		})
	}
}

func TestTargetingMatches_EmptyRules(t *testing.T) {
	eval := NewEvaluator()

	c := &campaign.Campaign{Status: campaign.StatusActive}
	assert.True(t, eval.TargetingMatches(c, Headers{}))
	assert.True(t, eval.TargetingMatches(nil, Headers{"user-agent": "x"}))
}
