// Package metrics exposes the pipeline counters served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutSubmits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ferremas_checkout_submits_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"}) // accepted | rejected | failed

	PaymentConfirms = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ferremas_payment_confirms_total",
		Help: "Payment confirmations by outcome.",
	}, []string{"outcome"}) // paid | replay | declined | token_not_found | error

	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ferremas_cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
)
