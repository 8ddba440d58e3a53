package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

type KafkaPublisherConfig struct {
	Brokers      []string      `validate:"required,unique,dive,required"`
	Topic        string        `validate:"required"`
	ClientID     string        `validate:"-"`
	WriteTimeout time.Duration `validate:"-"`
}

type KafkaPublisher struct {
	config KafkaPublisherConfig
	writer *kafka.Writer
	client *kafka.Client
	closed int32
}

var _ IPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(cfg KafkaPublisherConfig) (*KafkaPublisher, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("kafka publisher config: %w", err)
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	transport := &kafka.Transport{
		ClientID: cfg.ClientID,
	}

	return &KafkaPublisher{
		config: cfg,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           cfg.WriteTimeout,
			AllowAutoTopicCreation: true,
			Transport:              transport,
		},
		client: &kafka.Client{
			Addr:      kafka.TCP(cfg.Brokers...),
			Timeout:   cfg.WriteTimeout,
			Transport: transport,
		},
	}, nil
}

func (k *KafkaPublisher) Publish(ctx context.Context, msg *Message) error {
	if atomic.LoadInt32(&k.closed) == 1 {
		return ErrClosed
	}

	if msg == nil {
		return fmt.Errorf("nil message")
	}

	err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Body,
	})
	if err != nil {
		return fmt.Errorf("kafka write topic %s: %w", k.config.Topic, err)
	}

	return nil
}

// Check ensures producer is open and the brokers can serve the topic metadata.
func (k *KafkaPublisher) Check(ctx context.Context) error {
	if atomic.LoadInt32(&k.closed) == 1 {
		return ErrClosed
	}

	resp, err := k.client.Metadata(ctx, &kafka.MetadataRequest{
		Topics: []string{k.config.Topic},
	})
	if err != nil {
		return fmt.Errorf("kafka metadata: %w", err)
	}

	for _, topic := range resp.Topics {
		// unknown topic is fine as long as auto topic creation is allowed
		if topic.Error != nil && !errors.Is(topic.Error, kafka.UnknownTopicOrPartition) {
			return fmt.Errorf("kafka topic %s: %w", topic.Name, topic.Error)
		}
	}

	return nil
}

func (k *KafkaPublisher) Shutdown(_ context.Context) error {
	if !atomic.CompareAndSwapInt32(&k.closed, 0, 1) {
		return nil
	}

	return k.writer.Close()
}

// CheckKafkaBrokers dial the first reachable broker and read the broker list.
func CheckKafkaBrokers(ctx context.Context, brokers []string) (err error) {
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka broker configured")
	}

	for _, broker := range brokers {
		var conn *kafka.Conn
		conn, err = kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			err = fmt.Errorf("dial kafka broker %s: %w", broker, err)
			continue
		}

		_, err = conn.Brokers()
		_ = conn.Close()
		if err == nil {
			return nil
		}

		err = fmt.Errorf("read kafka brokers from %s: %w", broker, err)
	}

	return err
}

type KafkaSubscriberConfig struct {
	Brokers  []string `validate:"required,unique,dive,required"`
	Topic    string   `validate:"required"`
	GroupID  string   `validate:"required"`
	MaxBytes int      `validate:"min=0"`
}

type KafkaSubscriber struct {
	config KafkaSubscriberConfig
	reader *kafka.Reader
}

var _ ISubscriber = (*KafkaSubscriber)(nil)

func NewKafkaSubscriber(cfg KafkaSubscriberConfig) (*KafkaSubscriber, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("kafka subscriber config: %w", err)
	}

	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10e6 // 10MB
	}

	return &KafkaSubscriber{
		config: cfg,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			MaxBytes: cfg.MaxBytes,
		}),
	}, nil
}

// Receive fetch one message without committing it, the offset is committed on Ack.
// Nack skips the commit only. The reader keeps fetching next offsets and the next Ack commits past it,
// so a Nacked message is dropped, not redelivered.
func (k *KafkaSubscriber) Receive(ctx context.Context) (*Delivery, error) {
	m, err := k.reader.FetchMessage(ctx)
	if err != nil && isTimeout(ctx, err) {
		return nil, ErrNoMessage
	}

	if err != nil {
		return nil, fmt.Errorf("kafka fetch topic %s: %w", k.config.Topic, err)
	}

	msg := &Message{
		LoggableID: fmt.Sprintf("%s/%d/%d", m.Topic, m.Partition, m.Offset),
		Key:        string(m.Key),
		Body:       m.Value,
	}

	return NewDelivery(msg, func(ctx context.Context, reason error) error {
		if reason != nil {
			return nil
		}

		return k.reader.CommitMessages(ctx, m)
	}), nil
}

func (k *KafkaSubscriber) Shutdown(_ context.Context) error {
	return k.reader.Close()
}
