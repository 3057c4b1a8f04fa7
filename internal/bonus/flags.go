package bonus

import "strings"

// Keyword groups for the legacy coarse bonus-name classification.
var (
	commissionKeywords = []string{"commission", "affiliate"}
	downlineKeywords   = []string{"downline first deposit"}
	shareKeywords      = []string{"share bonus", "referrer"}
)

// CoarseFlags is the legacy keyword classification of bonus names seen
// on a site: Commission, Downline-deposit, Share-bonus, or Other.
type CoarseFlags struct {
	C bool `json:"C"`
	D bool `json:"D"`
	S bool `json:"S"`
	O bool `json:"O"`
}

// Observe classifies one bonus name into exactly one group,
// first match wins, and accumulates it.
func (f *CoarseFlags) Observe(name string) {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, commissionKeywords):
		f.C = true
	case containsAny(lower, downlineKeywords):
		f.D = true
	case containsAny(lower, shareKeywords):
		f.S = true
	default:
		f.O = true
	}
}

// ClaimFlags aggregates the fine-grained claim-config flags seen on a
// site: Auto-claim, Vip-only, Loss requirement, Topup requirement.
type ClaimFlags struct {
	A bool `json:"A"`
	V bool `json:"V"`
	L bool `json:"L"`
	T bool `json:"T"`
}

// Observe accumulates one bonus's claim flags.
func (f *ClaimFlags) Observe(b *Bonus) {
	if b.IsAutoClaim {
		f.A = true
	}
	if b.IsVIPOnly {
		f.V = true
	}
	if b.HasLossRequirement {
		f.L = true
	}
	if b.HasTopupRequirement {
		f.T = true
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
