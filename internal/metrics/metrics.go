package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Broadcast scopes used as the "scope" label.
const (
	ScopeLocal   = "local"
	ScopeCluster = "cluster"
)

// Hub Metrics
var (
	// ConnectedClients tracks clients currently registered on this node
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_connected_clients",
			Help: "Number of clients registered on this node",
		},
	)

	// MessagesBroadcast counts broadcast calls by where the message came from
	MessagesBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_broadcast_total",
			Help: "Messages fanned out to local clients by scope (local/cluster)",
		},
		[]string{"scope"},
	)

	// DeliveryFailures counts per-recipient send failures
	DeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_delivery_failures_total",
			Help: "Failed sends to individual local clients",
		},
	)
)

// Cluster Bus Metrics
var (
	// BusPublishFailures counts messages that could not be published to the bus
	BusPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_bus_publish_failures_total",
			Help: "Failed publications to the cluster bus",
		},
	)

	// BusDecodeFailures counts bus payloads that could not be decoded
	BusDecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_bus_decode_failures_total",
			Help: "Cluster bus payloads discarded because they could not be decoded",
		},
	)

	// BusLoopDiscards counts messages dropped because this node published them
	BusLoopDiscards = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_bus_loop_discards_total",
			Help: "Cluster bus messages discarded because they originated on this node",
		},
	)
)
