package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersCreatedTotal counts order creation outcomes.
	OrdersCreatedTotal *prometheus.CounterVec
	// OrderStatusTransitionsTotal counts status transitions by target status and outcome.
	OrderStatusTransitionsTotal *prometheus.CounterVec
	// CouponLookupsTotal counts coupon validations by result.
	CouponLookupsTotal *prometheus.CounterVec
	// CartItemsAddedTotal counts items added to carts.
	CartItemsAddedTotal prometheus.Counter
	// NotifyTasksTotal counts notification tasks processed by the worker.
	NotifyTasksTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of order build attempts by outcome.",
		}, []string{"result"})
		OrderStatusTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Count of order status transitions by target status and outcome.",
		}, []string{"status", "result"})
		CouponLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_lookups_total",
			Help:      "Count of coupon validations by result.",
		}, []string{"result"})
		CartItemsAddedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_items_added_total",
			Help:      "Total number of line items added to carts.",
		})
		NotifyTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_tasks_total",
			Help:      "Count of notification tasks processed by the worker.",
		}, []string{"result"})

		reg.MustRegister(
			OrdersCreatedTotal,
			OrderStatusTransitionsTotal,
			CouponLookupsTotal,
			CartItemsAddedTotal,
			NotifyTasksTotal,
		)
	})
}
