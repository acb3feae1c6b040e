package registry

import (
	"context"
	"time"
)

// Node is the record a node keeps alive in the registry.
type Node struct {
	NodeID      string    `json:"node_id"`
	StartedAt   time.Time `json:"started_at"`
	Connections int       `json:"connections"`
}

type Registry interface {
	Register(ctx context.Context) error
	Deregister(ctx context.Context) error
	List(ctx context.Context) ([]Node, error)
	StartHeartbeat(ctx context.Context) error
	StopHeartbeat()
	Close() error
}

var _ Registry = (*RedisRegistry)(nil)
