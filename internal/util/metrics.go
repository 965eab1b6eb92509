package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "Total number of products added to the catalog",
	})

	ProductsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "Total number of products removed from the catalog",
	})

	CartItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_added_total",
		Help: "Total number of items added to carts",
	})

	CartItemsRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_removed_total",
		Help: "Total number of items removed from carts",
	})

	CheckoutsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_completed_total",
		Help: "Total number of carts converted into orders",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of the checkout transaction",
		Buckets: prometheus.DefBuckets,
	})

	OutOfStockTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "out_of_stock_total",
		Help: "Total number of decrements refused because stock was drained",
	})

	StockDecrementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_decrements_total",
		Help: "Total number of successful inventory decrements",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
