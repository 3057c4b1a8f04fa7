// Package downline retrieves referral-network records through the paged
// getDownline module and appends only rows not already in the sink.
package downline

import (
	"fmt"
	"strconv"

	"slapred/bonusscraper/internal/coerce"
)

// Downline is one referred-user record. The registration timestamp is
// preserved verbatim in the upstream format.
type Downline struct {
	URL              string  `json:"url"`
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Count            int     `json:"count"`
	Amount           float64 `json:"amount"`
	RegisterDateTime string  `json:"register_date_time"`
}

// FromRaw maps one raw getDownline item onto a Downline.
func FromRaw(data map[string]interface{}, siteURL string) Downline {
	return Downline{
		URL:              siteURL,
		ID:               coerce.String(data["id"]),
		Name:             coerce.String(data["name"]),
		Count:            coerce.Int(data["count"]),
		Amount:           coerce.Number(data["amount"]),
		RegisterDateTime: coerce.String(data["registerDateTime"]),
	}
}

// Key returns the uniqueness key of a record. Two records are duplicates
// iff all six fields match, with the amount compared at two decimals.
func (d Downline) Key() string {
	return MakeKey(d.URL, d.ID, d.Name, strconv.Itoa(d.Count), d.Amount, d.RegisterDateTime)
}

// MakeKey builds a uniqueness key from raw field values.
func MakeKey(url, id, name, count string, amount float64, registerDateTime string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%.2f|%s", url, id, name, count, amount, registerDateTime)
}

// CSVHeader returns the downline CSV column names in output order.
func CSVHeader() []string {
	return []string{"url", "id", "name", "count", "amount", "register_date_time"}
}

// CSVRecord serializes the record in CSVHeader order.
func (d Downline) CSVRecord() []string {
	return []string{
		d.URL,
		d.ID,
		d.Name,
		strconv.Itoa(d.Count),
		strconv.FormatFloat(d.Amount, 'g', -1, 64),
		d.RegisterDateTime,
	}
}
