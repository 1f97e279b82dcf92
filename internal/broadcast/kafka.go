package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/baohaus/expeditor/internal/models"
)

// KafkaTransport publishes state snapshots to a single topic so other
// terminals in the store can follow the leader's view.
type KafkaTransport struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaTransport(cfg *models.Config) (*KafkaTransport, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	if cfg.SessionTimeoutMs > 0 {
		saramaConfig.Consumer.Group.Session.Timeout = time.Duration(cfg.SessionTimeoutMs) * time.Millisecond
	} else {
		saramaConfig.Consumer.Group.Session.Timeout = 45 * time.Second // default value
	}

	brokerList := strings.Split(cfg.KafkaBrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	log.Printf("Sarama producer created successfully with brokers %v", brokerList)
	return &KafkaTransport{producer: producer, topic: cfg.BroadcastTopic}, nil
}

func (k *KafkaTransport) Publish(snapshot *models.StateSnapshot) error {
	if k.producer == nil {
		return fmt.Errorf("Sarama producer is not initialized")
	}

	msg, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding state snapshot: %w", err)
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		log.Printf("Failed to send snapshot to topic %s: %v", k.topic, err)
		return err
	}
	return nil
}

func (k *KafkaTransport) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}

// Listener consumes broadcast snapshots on follower terminals.
type Listener struct {
	consumer sarama.Consumer
	topic    string
}

func NewListener(cfg *models.Config) (*Listener, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Return.Errors = false

	brokerList := strings.Split(cfg.KafkaBrokerList, ",")
	consumer, err := sarama.NewConsumer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama consumer: %w", err)
	}
	return &Listener{consumer: consumer, topic: cfg.BroadcastTopic}, nil
}

// Listen replays every broadcast snapshot into fn until the context is
// cancelled. Followers only ever need the newest snapshot, so the
// subscription starts at the tail of the topic.
func (l *Listener) Listen(ctx context.Context, fn func(*models.StateSnapshot)) error {
	partition, err := l.consumer.ConsumePartition(l.topic, 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("consuming topic %s: %w", l.topic, err)
	}
	defer partition.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-partition.Messages():
			if !ok {
				return nil
			}
			var snapshot models.StateSnapshot
			if err := json.Unmarshal(msg.Value, &snapshot); err != nil {
				log.Printf("discarding undecodable snapshot: %v", err)
				continue
			}
			fn(&snapshot)
		}
	}
}

func (l *Listener) Close() error {
	return l.consumer.Close()
}
