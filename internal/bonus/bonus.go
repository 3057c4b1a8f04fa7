// Package bonus normalizes and classifies claimable promotional offers
// returned by the syncData module.
package bonus

import (
	"strconv"

	"slapred/bonusscraper/internal/coerce"
)

// Bonus is one claimable promotional offer. Field order matches the
// output CSV column order.
type Bonus struct {
	URL          string `json:"url"`
	MerchantName string `json:"merchant_name"`
	ID           string `json:"id"`
	Name         string `json:"name"`

	Amount               float64  `json:"amount"`
	Rollover             float64  `json:"rollover"`
	BonusFixed           float64  `json:"bonus_fixed"`
	MinWithdraw          float64  `json:"min_withdraw"`
	MaxWithdraw          float64  `json:"max_withdraw"`
	WithdrawToBonusRatio *float64 `json:"withdraw_to_bonus_ratio"`
	MinTopup             float64  `json:"min_topup"`
	MaxTopup             float64  `json:"max_topup"`

	TransactionType string `json:"transaction_type"`
	Balance         string `json:"balance"`
	Bonus           string `json:"bonus"`
	BonusRandom     string `json:"bonus_random"`
	Reset           string `json:"reset"`
	ReferLink       string `json:"refer_link"`

	// Derived from claimConfig
	IsAutoClaim         bool     `json:"is_auto_claim"`
	IsVIPOnly           bool     `json:"is_vip_only"`
	HasLossRequirement  bool     `json:"has_loss_requirement"`
	HasTopupRequirement bool     `json:"has_topup_requirement"`
	LossReqPercent      *float64 `json:"loss_req_percent"`
	LossReqAmount       *float64 `json:"loss_req_amount"`
	TopupReqAmount      *float64 `json:"topup_req_amount"`
	ClaimType           string   `json:"claim_type"`

	// Raw claim fields retained for audit
	RawClaimConfig    string `json:"raw_claim_config"`
	RawClaimCondition string `json:"raw_claim_condition"`
}

// FromRaw maps one raw syncData item onto a Bonus, coercing every
// numeric field defensively and deriving the claim-config flags.
func FromRaw(data map[string]interface{}, siteURL, merchantName string) *Bonus {
	bonusFixed := coerce.Number(data["bonusFixed"])
	minWithdraw := coerce.Number(data["minWithdraw"])

	b := &Bonus{
		URL:             siteURL,
		MerchantName:    merchantName,
		ID:              coerce.String(data["id"]),
		Name:            coerce.String(data["name"]),
		Amount:          coerce.Number(data["amount"]),
		Rollover:        coerce.Number(data["rollover"]),
		BonusFixed:      bonusFixed,
		MinWithdraw:     minWithdraw,
		MaxWithdraw:     coerce.Number(data["maxWithdraw"]),
		MinTopup:        coerce.Number(data["minTopup"]),
		MaxTopup:        coerce.Number(data["maxTopup"]),
		TransactionType: coerce.String(data["transactionType"]),
		Balance:         coerce.String(data["balance"]),
		Bonus:           coerce.String(data["bonus"]),
		BonusRandom:     coerce.String(data["bonusRandom"]),
		Reset:           coerce.String(data["reset"]),
		ReferLink:       coerce.String(data["referLink"]),
	}

	// Defined iff a fixed bonus amount exists.
	if bonusFixed != 0 {
		ratio := minWithdraw / bonusFixed
		b.WithdrawToBonusRatio = &ratio
	}

	b.parseClaimConfig(coerce.String(data["claimConfig"]), coerce.String(data["claimCondition"]))
	return b
}

// CSVHeader returns the bonus CSV column names in output order.
func CSVHeader() []string {
	return []string{
		"url", "merchant_name", "id", "name",
		"amount", "rollover", "bonus_fixed", "min_withdraw", "max_withdraw",
		"withdraw_to_bonus_ratio", "min_topup", "max_topup",
		"transaction_type", "balance", "bonus", "bonus_random", "reset", "refer_link",
		"is_auto_claim", "is_vip_only", "has_loss_requirement", "has_topup_requirement",
		"loss_req_percent", "loss_req_amount", "topup_req_amount", "claim_type",
		"raw_claim_config", "raw_claim_condition",
	}
}

// CSVRecord serializes the bonus in CSVHeader order. Unset optional
// numbers serialize as empty cells.
func (b *Bonus) CSVRecord() []string {
	return []string{
		b.URL, b.MerchantName, b.ID, b.Name,
		formatFloat(b.Amount), formatFloat(b.Rollover), formatFloat(b.BonusFixed),
		formatFloat(b.MinWithdraw), formatFloat(b.MaxWithdraw),
		formatOptFloat(b.WithdrawToBonusRatio),
		formatFloat(b.MinTopup), formatFloat(b.MaxTopup),
		b.TransactionType, b.Balance, b.Bonus, b.BonusRandom, b.Reset, b.ReferLink,
		strconv.FormatBool(b.IsAutoClaim), strconv.FormatBool(b.IsVIPOnly),
		strconv.FormatBool(b.HasLossRequirement), strconv.FormatBool(b.HasTopupRequirement),
		formatOptFloat(b.LossReqPercent), formatOptFloat(b.LossReqAmount),
		formatOptFloat(b.TopupReqAmount), b.ClaimType,
		b.RawClaimConfig, b.RawClaimCondition,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatOptFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
