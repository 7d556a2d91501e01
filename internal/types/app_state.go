package types

// AppState is the small amount of widget state kept across runs.
type AppState struct {
	Draft       string `json:"draft,omitempty"`
	WidgetOpen  bool   `json:"widget_open"`
	LastOrderNo string `json:"last_order_number,omitempty"`
}
