package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicOrderDelivered     = "order.delivered"
	TopicOrderCanceled      = "order.canceled"
	TopicOrderReturned      = "order.returned"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOrderStatusChanged,
		TopicOrderDelivered,
		TopicOrderCanceled,
		TopicOrderReturned,
	}
}
