package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/wes-chat-relay/pkg/pubsub"
)

func TestFromViper_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := fromViper(viper.New())
	req.NoError(err)
	req.Equal(8080, cfg.Server.Port)
	req.Equal(ModeLocal, cfg.Node.Mode)
	req.False(cfg.IsCluster())
	req.Equal("/chat", cfg.WebSocket.Path)
	req.Equal(30*time.Second, cfg.WebSocket.PingInterval)
	req.Equal(60*time.Second, cfg.WebSocket.PongWait)
	req.Equal(256, cfg.WebSocket.SendBufferSize)
	req.Equal(pubsub.DriverRedis, cfg.PubSub.Driver)
	req.Equal("chat-messages", cfg.PubSub.Topic)
	req.Equal(2*time.Second, cfg.PubSub.PublishTimeout)
	req.Equal("chat-relay", cfg.PubSub.Kafka.GroupID)
	req.Equal("chat:nodes", cfg.Registry.Prefix)
	req.Equal(30*time.Second, cfg.Registry.KeyTTL)
}

func TestFromViper_ClusterOverrides(t *testing.T) {
	req := require.New(t)
	v := viper.New()
	v.Set("node.mode", ModeCluster)
	v.Set("node.id", "node-a")
	v.Set("pubsub.driver", pubsub.DriverKafka)
	v.Set("pubsub.topic", "relay")
	v.Set("pubsub.kafka.brokers", "kafka:9092")
	v.Set("pubsub.publish_timeout", "500ms")

	cfg, err := fromViper(v)
	req.NoError(err)
	req.True(cfg.IsCluster())
	req.Equal("node-a", cfg.Node.ID)
	req.Equal(pubsub.DriverKafka, cfg.PubSub.Driver)
	req.Equal("relay", cfg.PubSub.Topic)
	req.Equal("kafka:9092", cfg.PubSub.Kafka.Brokers)
	req.Equal(500*time.Millisecond, cfg.PubSub.PublishTimeout)
}

func TestFromViper_Environment(t *testing.T) {
	req := require.New(t)
	t.Setenv("NODE_MODE", ModeCluster)
	t.Setenv("PUBSUB_DRIVER", pubsub.DriverMemory)
	t.Setenv("PORT", "9090")

	cfg, err := fromViper(viper.New())
	req.NoError(err)
	req.True(cfg.IsCluster())
	req.Equal(pubsub.DriverMemory, cfg.PubSub.Driver)
	req.Equal(9090, cfg.Server.Port)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := map[string]map[string]any{
		"unknown mode":          {"node.mode": "mesh"},
		"unknown driver":        {"pubsub.driver": "nats"},
		"cluster without topic": {"node.mode": ModeCluster, "pubsub.topic": ""},
		"ping after pong":       {"websocket.ping_interval": "90s"},
		"empty send buffer":     {"websocket.send_buffer_size": 0},
		"heartbeat after ttl":   {"registry.enabled": true, "registry.heartbeat_interval": "1m"},
	}

	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			for k, val := range values {
				v.Set(k, val)
			}
			_, err := fromViper(v)
			require.Error(t, err)
		})
	}
}
