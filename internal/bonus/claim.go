package bonus

import (
	"encoding/json"
	"strings"

	"slapred/bonusscraper/helpers"
	"slapred/bonusscraper/internal/coerce"
	"slapred/bonusscraper/logger"
)

// parseClaimConfig derives the categorical claim flags from the
// claimConfig field, a JSON-encoded array of tag tokens such as
// "AUTO_CLAIM", "LOSS_20%", or "TOPUP_50".
//
// Tokens are evaluated independently with substring predicates; flags are
// set-once within one bonus except claim type, where the last matching
// token wins. A malformed value is logged and ignored, never fatal; the
// raw strings are always retained for audit.
func (b *Bonus) parseClaimConfig(rawConfig, rawCondition string) {
	b.RawClaimConfig = rawConfig
	b.RawClaimCondition = rawCondition

	if !strings.HasPrefix(rawConfig, "[") {
		return
	}

	var tokens []interface{}
	if err := json.Unmarshal([]byte(rawConfig), &tokens); err != nil {
		logger.Debug("claim config for bonus %s not parseable: %v", b.ID, err)
		return
	}

	for _, raw := range tokens {
		token, ok := raw.(string)
		if !ok {
			continue
		}
		upper := strings.ToUpper(token)

		if strings.Contains(upper, "AUTO_CLAIM") {
			b.IsAutoClaim = true
		}
		if strings.Contains(upper, "VIP") {
			b.IsVIPOnly = true
		}
		if strings.Contains(upper, "DEPOSIT") {
			b.ClaimType = "DEPOSIT"
		}
		if strings.Contains(upper, "RESCUE") {
			b.ClaimType = "RESCUE"
		}
		if strings.Contains(upper, "REBATE") {
			b.ClaimType = "REBATE"
		}

		if strings.Contains(upper, "LOSS") {
			b.HasLossRequirement = true
			// A token with a separator carries a threshold, even an empty
			// one: "LOSS_" means a zero amount, bare "LOSS" means none.
			if strings.Contains(token, "_") {
				tail := helpers.LastSplitPart(token, "_")
				if strings.Contains(tail, "%") {
					percent := coerce.Number(strings.ReplaceAll(tail, "%", ""))
					b.LossReqPercent = &percent
				} else {
					amount := coerce.Number(tail)
					b.LossReqAmount = &amount
				}
			}
		}

		if strings.Contains(upper, "TOPUP") {
			b.HasTopupRequirement = true
			if strings.Contains(token, "_") {
				amount := coerce.Number(helpers.LastSplitPart(token, "_"))
				b.TopupReqAmount = &amount
			}
		}
	}
}
