package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type MerchantStatus string

const (
	MerchantPending MerchantStatus = "pending"
	MerchantActive  MerchantStatus = "active"
)

type BillingStatus string

const (
	BillingPaid    BillingStatus = "paid"
	BillingOverdue BillingStatus = "overdue"
	BillingTrial   BillingStatus = "trial"
)

// Bid is an advertiser's bid amount. It is untrusted input: whatever is
// stored (number, numeric string, garbage, null) decodes without error and
// anything non-numeric is 0.
type Bid float64

func (b *Bid) UnmarshalJSON(data []byte) error {
	*b = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if finite(f) {
			*b = Bid(f)
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = ParseBid(s, 0)
	}
	return nil
}

// ParseBid parses a user-entered bid. Blank or non-numeric input yields
// def; NaN and infinities count as non-numeric.
func ParseBid(s string, def Bid) Bid {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(f) {
		return def
	}
	return Bid(f)
}

// Finite returns b, or 0 when b is NaN or infinite.
func (b Bid) Finite() Bid {
	if !finite(float64(b)) {
		return 0
	}
	return b
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MerchantRequest is a sponsor record. Only active merchants are ever
// injected into search results.
type MerchantRequest struct {
	ID            string         `json:"id"`
	BusinessName  string         `json:"businessName"`
	Category      string         `json:"category"`
	AppliedDate   string         `json:"appliedDate"` // YYYY-MM-DD
	Status        MerchantStatus `json:"status"`
	BidAmount     Bid            `json:"bidAmount"`
	BillingStatus BillingStatus  `json:"billingStatus,omitempty"`
}

func (m MerchantRequest) IsActive() bool { return m.Status == MerchantActive }
