// Package deal derives discounted prices and decides whether a deal is
// currently active. The backend stores the raw isOnDeal flag and never
// clears it when the expiration passes, so every display surface must go
// through IsActive instead of trusting the flag alone.
package deal

import (
	"errors"
	"math"
	"time"
)

var ErrInvalidDiscount = errors.New("discount percentage must be between 0 and 100 exclusive")

type Deal struct {
	IsOnDeal    bool       `json:"isOnDeal"`
	DealPrice   float64    `json:"dealPrice"`
	DealExpires *time.Time `json:"dealExpires,omitempty"`
}

type Computed struct {
	DealPrice float64
	ExpiresAt *time.Time
}

// Compute returns the discounted price, rounded to currency granularity,
// and the expiration timestamp. expirationDays <= 0 means the deal never
// expires.
func Compute(originalPrice, discountPercentage float64, expirationDays int) (Computed, error) {
	if discountPercentage <= 0 || discountPercentage >= 100 {
		return Computed{}, ErrInvalidDiscount
	}

	price := round2(originalPrice * (1 - discountPercentage/100))

	var expiresAt *time.Time
	if expirationDays > 0 {
		t := time.Now().Add(time.Duration(expirationDays) * 24 * time.Hour)
		expiresAt = &t
	}

	return Computed{DealPrice: price, ExpiresAt: expiresAt}, nil
}

// IsActive reports whether the deal should be shown as live at the given
// instant. A nil expiration means the deal runs until the flag is cleared.
func IsActive(d *Deal, now time.Time) bool {
	if d == nil || !d.IsOnDeal {
		return false
	}
	if d.DealExpires == nil {
		return true
	}
	return d.DealExpires.After(now)
}

// SavingsPercent is the rounded badge percentage. A zero original price
// yields 0 so callers can render nothing instead of dividing by zero.
func SavingsPercent(original, dealPrice float64) int {
	if original == 0 {
		return 0
	}
	return int(math.Round(100 * (1 - dealPrice/original)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
