package types

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID             int64           `json:"order_id"`
	Number         string          `json:"order_number"`
	Total          decimal.Decimal `json:"total_amount"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status,omitempty"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// DisplayNumber is the order number shown to customers, falling back to the
// numeric ID for orders created before numbering existed.
func (o Order) DisplayNumber() string {
	if o.Number != "" {
		return o.Number
	}
	return formatInt(o.ID)
}

func (o Order) OrderIDPtr() *int64 {
	if o.ID <= 0 {
		return nil
	}
	id := o.ID
	return &id
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	type wire struct {
		ID             json.Number     `json:"order_id"`
		Number         json.RawMessage `json:"order_number"`
		Total          decimal.Decimal `json:"total_amount"`
		Status         string          `json:"status"`
		PaymentStatus  string          `json:"payment_status"`
		TrackingNumber *string         `json:"tracking_number"`
		CreatedAt      string          `json:"created_at"`
	}
	var raw wire
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID != "" {
		id, err := raw.ID.Int64()
		if err != nil {
			return err
		}
		o.ID = id
	}
	o.Number = rawScalar(raw.Number)
	o.Total = raw.Total
	o.Status = strings.TrimSpace(raw.Status)
	o.PaymentStatus = strings.TrimSpace(raw.PaymentStatus)
	o.TrackingNumber = ""
	if raw.TrackingNumber != nil {
		o.TrackingNumber = strings.TrimSpace(*raw.TrackingNumber)
	}
	o.CreatedAt = ParseTimestamp(raw.CreatedAt)
	return nil
}

// rawScalar renders a JSON string or number as plain text. Order numbers
// have been seen as both.
func rawScalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}
