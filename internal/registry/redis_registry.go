package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/weiawesome/wes-chat-relay/internal/config"
	"github.com/weiawesome/wes-chat-relay/internal/domain"
	"github.com/weiawesome/wes-chat-relay/pkg/log"
)

// ConnectionCounter reports the number of clients connected to this node.
type ConnectionCounter func() int

// RedisRegistry advertises this node under <prefix>:<node_id> and keeps the
// key alive while the node runs. Nodes that stop refreshing expire on their own.
type RedisRegistry struct {
	client            *redis.Client
	node              domain.NodeID
	startedAt         time.Time
	connections       ConnectionCounter
	prefix            string
	keyTTL            time.Duration
	heartbeatInterval time.Duration
	cancel            context.CancelFunc
}

func NewRedisRegistry(cfg config.RegistryConfig, node domain.NodeID, connections ConnectionCounter) (*RedisRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if connections == nil {
		connections = func() int { return 0 }
	}

	return &RedisRegistry{
		client:            client,
		node:              node,
		startedAt:         time.Now().UTC(),
		connections:       connections,
		prefix:            cfg.Prefix,
		keyTTL:            cfg.KeyTTL,
		heartbeatInterval: cfg.HeartbeatInterval,
	}, nil
}

func keyFor(prefix string, node domain.NodeID) string {
	return fmt.Sprintf("%s:%s", prefix, node)
}

func (r *RedisRegistry) record() ([]byte, error) {
	return json.Marshal(Node{
		NodeID:      r.node.String(),
		StartedAt:   r.startedAt,
		Connections: r.connections(),
	})
}

func (r *RedisRegistry) Register(ctx context.Context) error {
	data, err := r.record()
	if err != nil {
		return fmt.Errorf("failed to encode node record: %w", err)
	}

	if err := r.client.Set(ctx, keyFor(r.prefix, r.node), data, r.keyTTL).Err(); err != nil {
		return fmt.Errorf("failed to register node: %w", err)
	}

	l := log.L()
	l.Debug().Str(log.FieldNodeID, r.node.String()).Msg("registered node")
	return nil
}

func (r *RedisRegistry) Deregister(ctx context.Context) error {
	if err := r.client.Del(ctx, keyFor(r.prefix, r.node)).Err(); err != nil {
		return fmt.Errorf("failed to deregister node: %w", err)
	}

	l := log.L()
	l.Info().Str(log.FieldNodeID, r.node.String()).Msg("deregistered node")
	return nil
}

// List returns every node whose key has not expired, ordered by node id.
func (r *RedisRegistry) List(ctx context.Context) ([]Node, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan nodes: %w", err)
	}

	if len(keys) == 0 {
		return []Node{}, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read nodes: %w", err)
	}

	return decodeNodes(values), nil
}

// decodeNodes skips keys that expired between SCAN and MGET and values that
// are not node records.
func decodeNodes(values []interface{}) []Node {
	nodes := make([]Node, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var n Node
		if err := json.Unmarshal([]byte(s), &n); err != nil || n.NodeID == "" {
			continue
		}
		nodes = append(nodes, n)
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].NodeID < nodes[j].NodeID
	})
	return nodes
}

func (r *RedisRegistry) StartHeartbeat(ctx context.Context) error {
	if err := r.Register(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	go r.heartbeatLoop(ctx)
	l := log.L()
	l.Info().Dur("interval", r.heartbeatInterval).Dur("ttl", r.keyTTL).Msg("registry heartbeat started")
	return nil
}

func (r *RedisRegistry) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(r.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Register(ctx); err != nil {
				l := log.L()
				l.Error().Str(log.FieldNodeID, r.node.String()).Err(err).Msg("failed to refresh node key")
			}
		}
	}
}

func (r *RedisRegistry) StopHeartbeat() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Close stops the heartbeat, removes this node's key and closes the client.
func (r *RedisRegistry) Close() error {
	r.StopHeartbeat()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Deregister(ctx); err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("failed to deregister node on close")
	}
	return r.client.Close()
}
