package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		},
	}
}

// ParseBrokers splits the comma separated KAFKA_BROKERS value.
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// PublishReceipt keys messages by certificate number so one receipt's events
// stay ordered within a partition.
func (k *KafkaPublisher) PublishReceipt(ctx context.Context, event domain.ReceiptEvent) error {
	msg, err := json.Marshal(toReceiptEvent(event))
	if err != nil {
		return err
	}

	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.CertificateNo),
		Value: msg,
		Time:  time.Now(),
	})
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishReceipt(context.Context, domain.ReceiptEvent) error {
	return nil
}
