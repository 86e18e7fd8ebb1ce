package enums

// OrderStatus follows an order from submission to the boundary's answer.
type OrderStatus string

const (
	OrderStatusPlaced OrderStatus = "placed"
	OrderStatusFailed OrderStatus = "failed"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusFailed:
		return true
	}
	return false
}
