package bonus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoarseFlagsObserve(t *testing.T) {
	tests := []struct {
		name     string
		bonus    string
		expected CoarseFlags
	}{
		{"commission keyword", "Weekly Commission Payout", CoarseFlags{C: true}},
		{"affiliate keyword", "Affiliate Reward", CoarseFlags{C: true}},
		{"downline keyword", "Downline First Deposit Bonus", CoarseFlags{D: true}},
		{"share keyword", "Share Bonus 5%", CoarseFlags{S: true}},
		{"referrer keyword", "Referrer Gift", CoarseFlags{S: true}},
		{"no keyword", "Welcome Bonus", CoarseFlags{O: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f CoarseFlags
			f.Observe(tt.bonus)
			assert.Equal(t, tt.expected, f)
		})
	}
}

// A name matching several groups counts only for the first group.
func TestCoarseFlagsFirstMatchWins(t *testing.T) {
	var f CoarseFlags
	f.Observe("Affiliate Share Bonus")
	assert.Equal(t, CoarseFlags{C: true}, f)
}

func TestCoarseFlagsAccumulate(t *testing.T) {
	var f CoarseFlags
	f.Observe("Commission")
	f.Observe("Welcome Bonus")
	assert.Equal(t, CoarseFlags{C: true, O: true}, f)
}

func TestClaimFlagsObserve(t *testing.T) {
	var f ClaimFlags
	f.Observe(&Bonus{IsAutoClaim: true})
	f.Observe(&Bonus{HasLossRequirement: true})
	assert.Equal(t, ClaimFlags{A: true, L: true}, f)
}
