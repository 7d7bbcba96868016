package storefront

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts storefront business events. A nil *Metrics records nothing.
type Metrics struct {
	OrdersPlaced  prometheus.Counter
	CartAdditions prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders placed through checkout",
		}),
		CartAdditions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_additions_total",
			Help: "Successful add-to-cart calls",
		}),
	}

	reg.MustRegister(m.OrdersPlaced, m.CartAdditions)
	return m
}

func (m *Metrics) orderPlaced() {
	if m != nil {
		m.OrdersPlaced.Inc()
	}
}

func (m *Metrics) cartAdded() {
	if m != nil {
		m.CartAdditions.Inc()
	}
}
