package support

import (
	"strconv"
	"strings"

	"storechat/internal/types"
)

// MatchOrder finds the order whose number, or decimal id, equals input
// exactly.
func MatchOrder(orders []types.Order, input string) (types.Order, bool) {
	if strings.TrimSpace(input) == "" {
		return types.Order{}, false
	}
	for _, order := range orders {
		if order.Number != "" && order.Number == input {
			return order, true
		}
		if order.ID != 0 && strconv.FormatInt(order.ID, 10) == input {
			return order, true
		}
	}
	return types.Order{}, false
}

func orderLabel(order types.Order) string {
	return order.DisplayNumber()
}

// FormatTotal renders an order total with two decimals.
func FormatTotal(order types.Order) string {
	return "$" + order.Total.StringFixed(2)
}
