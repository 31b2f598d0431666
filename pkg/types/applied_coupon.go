package types

import (
	"database/sql/driver"
	"encoding/json"
)

// AppliedCoupon is the snapshot of a coupon at the moment it was applied to
// a cart. Snapshotting keeps the discount stable if the coupon definition
// changes before checkout completes.
type AppliedCoupon struct {
	Code         string `json:"code"`
	Kind         string `json:"kind"`
	Amount       int64  `json:"amount"`
	AppliedCents int64  `json:"applied_cents"`
}

// Value serializes the coupon snapshot to JSON.
func (c *AppliedCoupon) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan decodes JSONB into the coupon snapshot.
func (c *AppliedCoupon) Scan(value interface{}) error {
	if value == nil {
		*c = AppliedCoupon{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, c)
}
