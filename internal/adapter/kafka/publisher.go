// Package kafka publishes normalized market records to a sink topic for
// downstream consumers. Publishing is optional and never gates snapshot
// persistence.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/khetsetu/agri-market-service/internal/config"
	"github.com/khetsetu/agri-market-service/internal/domain"
)

// Publisher produces one message per normalized record.
// It implements pipeline.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishDay serializes and publishes a day's records in a single
// WriteMessages call.
func (p *Publisher) PublishDay(ctx context.Context, date time.Time, records []domain.MarketRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(date, records[i], len(records))
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a MarketRecord into a Kafka message keyed by
// its market identity, so duplicate observations land on the same partition.
func serializeToMessage(date time.Time, rec domain.MarketRecord, dayCount int) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize market record: %w", err)
	}
	key := strings.Join([]string{rec.State, rec.District, rec.Market, rec.Commodity, rec.Date.Format("2006-01-02")}, "|")
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "snapshot_date", Value: []byte(date.Format("2006-01-02"))},
			{Key: "day_records", Value: []byte(strconv.Itoa(dayCount))},
		},
	}, nil
}
