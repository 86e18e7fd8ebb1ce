package enums

type OutboxEventType string

const (
	EventOrderPlaced OutboxEventType = "checkout.order_placed"
)

type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
)
