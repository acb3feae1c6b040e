package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	pkgconfig "github.com/weiawesome/wes-chat-relay/pkg/config"
	"github.com/weiawesome/wes-chat-relay/pkg/pubsub"
)

// Deployment modes.
const (
	ModeLocal   = "local"
	ModeCluster = "cluster"
)

type Config struct {
	Server    ServerConfig
	Node      NodeConfig
	WebSocket WebSocketConfig
	PubSub    PubSubConfig `mapstructure:"pubsub"`
	Registry  RegistryConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type NodeConfig struct {
	Mode string
	ID   string
}

type WebSocketConfig struct {
	Path           string
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBufferSize int           `mapstructure:"send_buffer_size"`
}

type PubSubConfig struct {
	pubsub.Config  `mapstructure:",squash"`
	Topic          string
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type RegistryConfig struct {
	Enabled           bool
	Address           string
	Password          string
	DB                int
	Prefix            string
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	KeyTTL            time.Duration `mapstructure:"key_ttl"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// IsCluster reports whether the node shares a bus with other nodes.
func (c *Config) IsCluster() bool {
	return c.Node.Mode == ModeCluster
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("node.mode", "NODE_MODE")
	v.BindEnv("node.id", "NODE_ID")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.topic", "PUBSUB_TOPIC")
	v.BindEnv("pubsub.redis.address", "REDIS_ADDRESS")
	v.BindEnv("pubsub.redis.password", "REDIS_PASSWORD")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("registry.enabled", "REGISTRY_ENABLED")
	v.BindEnv("registry.address", "REDIS_ADDRESS")
	v.BindEnv("registry.password", "REDIS_PASSWORD")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.PubSub.PublishTimeout = parseDuration(v, "pubsub.publish_timeout", 2*time.Second)
	cfg.PubSub.Redis.ReadTimeout = parseDuration(v, "pubsub.redis.read_timeout", 3*time.Second)
	cfg.PubSub.Redis.WriteTimeout = parseDuration(v, "pubsub.redis.write_timeout", 3*time.Second)
	cfg.Registry.HeartbeatInterval = parseDuration(v, "registry.heartbeat_interval", 10*time.Second)
	cfg.Registry.KeyTTL = parseDuration(v, "registry.key_ttl", 30*time.Second)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("node.mode", ModeLocal)
	v.SetDefault("node.id", "")
	v.SetDefault("websocket.path", "/chat")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer_size", 256)
	v.SetDefault("pubsub.driver", pubsub.DriverRedis)
	v.SetDefault("pubsub.topic", "chat-messages")
	v.SetDefault("pubsub.publish_timeout", "2s")
	v.SetDefault("pubsub.redis.address", "localhost:6379")
	v.SetDefault("pubsub.redis.password", "")
	v.SetDefault("pubsub.redis.db", 0)
	v.SetDefault("pubsub.redis.pool_size", 10)
	v.SetDefault("pubsub.redis.read_timeout", "3s")
	v.SetDefault("pubsub.redis.write_timeout", "3s")
	v.SetDefault("pubsub.kafka.brokers", "localhost:9092")
	v.SetDefault("pubsub.kafka.group_id", "chat-relay")
	v.SetDefault("pubsub.kafka.partitions", 4)
	v.SetDefault("registry.enabled", false)
	v.SetDefault("registry.address", "localhost:6379")
	v.SetDefault("registry.password", "")
	v.SetDefault("registry.db", 0)
	v.SetDefault("registry.prefix", "chat:nodes")
	v.SetDefault("registry.heartbeat_interval", "10s")
	v.SetDefault("registry.key_ttl", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	switch c.Node.Mode {
	case ModeLocal, ModeCluster:
	default:
		return fmt.Errorf("invalid node.mode %q: expected %q or %q", c.Node.Mode, ModeLocal, ModeCluster)
	}

	switch c.PubSub.Driver {
	case pubsub.DriverRedis, pubsub.DriverKafka, pubsub.DriverMemory:
	default:
		return fmt.Errorf("invalid pubsub.driver %q", c.PubSub.Driver)
	}

	if c.IsCluster() && c.PubSub.Topic == "" {
		return fmt.Errorf("pubsub.topic is required in %s mode", ModeCluster)
	}
	if c.WebSocket.SendBufferSize <= 0 {
		return fmt.Errorf("websocket.send_buffer_size must be positive, got %d", c.WebSocket.SendBufferSize)
	}
	if c.WebSocket.MaxMessageSize <= 0 {
		return fmt.Errorf("websocket.max_message_size must be positive, got %d", c.WebSocket.MaxMessageSize)
	}
	if c.WebSocket.PingInterval <= 0 || c.WebSocket.PingInterval >= c.WebSocket.PongWait {
		return fmt.Errorf("websocket.ping_interval must be positive and shorter than pong_wait")
	}
	if c.Registry.Enabled && c.Registry.HeartbeatInterval >= c.Registry.KeyTTL {
		return fmt.Errorf("registry.heartbeat_interval must be shorter than registry.key_ttl")
	}
	return nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
