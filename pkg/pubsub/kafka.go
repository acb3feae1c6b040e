package pubsub

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/weiawesome/wes-chat-relay/pkg/log"
)

const (
	defaultKafkaPartitions = 4
	kafkaPollTimeoutMs     = 500
	kafkaFlushTimeoutMs    = 5000
)

type kafkaSubscription struct {
	consumer *kafka.Consumer
	cancel   context.CancelFunc
	done     chan struct{}
}

// KafkaPubSub relays payloads over Kafka topics. Every instance consumes
// with its own consumer group so each process sees every message published
// to a topic, starting from the latest offset.
type KafkaPubSub struct {
	producer      *kafka.Producer
	subscriptions map[string]*kafkaSubscription
	config        KafkaConfig
	groupID       string
	ensured       map[string]struct{}
	mu            sync.Mutex
	eventsDone    chan struct{}
}

// NewKafkaPubSub creates the producer. consumerID identifies this process in
// its consumer group name.
func NewKafkaPubSub(cfg KafkaConfig, consumerID string) (*KafkaPubSub, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	k := &KafkaPubSub{
		producer:      p,
		subscriptions: make(map[string]*kafkaSubscription),
		config:        cfg,
		groupID:       consumerGroupID(cfg.GroupID, consumerID),
		ensured:       make(map[string]struct{}),
		eventsDone:    make(chan struct{}),
	}
	go k.watchProducerEvents()

	return k, nil
}

// consumerGroupID derives the per-process group.
func consumerGroupID(base, consumerID string) string {
	if base == "" {
		base = "pubsub-default"
	}
	if consumerID == "" {
		return sanitizeGroupID(base)
	}
	return sanitizeGroupID(base + "-" + consumerID)
}

var groupIDRegexp = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func sanitizeGroupID(s string) string {
	return groupIDRegexp.ReplaceAllString(s, "-")
}

// ensureTopic creates topic once per process. An existing topic is fine.
func (k *KafkaPubSub) ensureTopic(ctx context.Context, topic string) error {
	k.mu.Lock()
	_, ok := k.ensured[topic]
	k.mu.Unlock()
	if ok {
		return nil
	}

	admin, err := kafka.NewAdminClientFromProducer(k.producer)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	partitions := k.config.Partitions
	if partitions <= 0 {
		partitions = defaultKafkaPartitions
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}})
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}
	for _, res := range results {
		if code := res.Error.Code(); code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %v", res.Topic, res.Error)
		}
	}

	k.mu.Lock()
	k.ensured[topic] = struct{}{}
	k.mu.Unlock()
	return nil
}

// watchProducerEvents logs producer level errors. Delivery reports go to the
// channel passed by Publish.
func (k *KafkaPubSub) watchProducerEvents() {
	defer close(k.eventsDone)
	l := log.L()
	for e := range k.producer.Events() {
		switch ev := e.(type) {
		case kafka.Error:
			l.Error().Err(ev).Int("code", int(ev.Code())).Msg("kafka producer error")
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				l.Error().Err(ev.TopicPartition.Error).Msg("kafka delivery failed")
			}
		}
	}
}

// Publish produces payload and waits for the broker acknowledgement or for
// ctx to end, whichever comes first.
func (k *KafkaPubSub) Publish(ctx context.Context, topic string, payload []byte) error {
	delivery := make(chan kafka.Event, 1)
	err := k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Value: payload,
	}, delivery)
	if err != nil {
		return fmt.Errorf("failed to produce to %s: %w", topic, err)
	}

	select {
	case e := <-delivery:
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("failed to deliver to %s: %w", topic, m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("delivery to %s not confirmed: %w", topic, ctx.Err())
	}
}

func (k *KafkaPubSub) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if err := k.ensureTopic(ctx, topic); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldTopic, topic).Msg("failed to ensure kafka topic")
	}

	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":       k.config.Brokers,
		"group.id":                k.groupID,
		"auto.offset.reset":       "latest",
		"enable.auto.commit":      true,
		"auto.commit.interval.ms": 5000,
	})
	if err != nil {
		return fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	if err := c.Subscribe(topic, nil); err != nil {
		c.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &kafkaSubscription{
		consumer: c,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	k.mu.Lock()
	previous := k.subscriptions[topic]
	k.subscriptions[topic] = sub
	k.mu.Unlock()

	if previous != nil {
		previous.stop()
	}

	l := log.L()
	l.Info().Str(log.FieldTopic, topic).Str("group_id", k.groupID).Msg("kafka consumer subscribed")

	go k.consume(subCtx, sub, topic, safeHandler(DriverKafka, topic, handler))
	return nil
}

func (k *KafkaPubSub) consume(ctx context.Context, sub *kafkaSubscription, topic string, handler Handler) {
	defer close(sub.done)
	l := log.L()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch e := sub.consumer.Poll(kafkaPollTimeoutMs).(type) {
		case nil:
		case *kafka.Message:
			handler(ctx, e.Value)
		case kafka.Error:
			l.Error().Err(e).Int("code", int(e.Code())).Bool("fatal", e.IsFatal()).Str(log.FieldTopic, topic).Msg("kafka consumer error")
			if e.IsFatal() {
				return
			}
		}
	}
}

func (s *kafkaSubscription) stop() {
	s.cancel()
	<-s.done
	s.consumer.Close()
}

// Close stops every consumer, flushes pending messages and closes the producer.
func (k *KafkaPubSub) Close() error {
	k.mu.Lock()
	subs := k.subscriptions
	k.subscriptions = make(map[string]*kafkaSubscription)
	k.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}

	if remaining := k.producer.Flush(kafkaFlushTimeoutMs); remaining > 0 {
		l := log.L()
		l.Warn().Int("pending", remaining).Msg("kafka producer closed with undelivered messages")
	}
	k.producer.Close()
	<-k.eventsDone
	return nil
}
