package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/hotspot-etl/internal/config"
	"github.com/couchcryptid/hotspot-etl/internal/domain"
	"github.com/couchcryptid/hotspot-etl/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Header keys set on every report message.
const (
	HeaderSeason      = "season"
	HeaderGeneratedAt = "generated_at"
	HeaderRunID       = "run_id"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes each ranked hotspot report as one Kafka message.
// It implements pipeline.ReportLoader.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Message is the JSON value of a published report: the hotspot entry plus
// the season and position it was ranked at.
type Message struct {
	Season      string    `json:"season"`
	Rank        int       `json:"rank"`
	GeneratedAt time.Time `json:"generatedAt"`
	domain.HotspotReport
}

// LoadReport publishes every season's entries in a single WriteMessages call.
// Messages are keyed by season and hotspot so a compacted topic keeps the
// latest entry for each.
func (w *Writer) LoadReport(ctx context.Context, out domain.Output) error {
	msgs := make([]kafkago.Message, 0, out.Seasonal.Len())
	for _, season := range domain.Seasons {
		for i, entry := range out.Seasonal[season] {
			msg, err := serializeToMessage(season, i+1, entry, out.GeneratedAt, out.RunID)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) == 0 {
		w.logger.Info("no hotspot reports to publish")
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish reports: %w", err)
	}
	w.metrics.ReportsPublished.Add(float64(len(msgs)))
	w.logger.Info("reports published", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey is the partitioning key for a season's hotspot entry.
func MessageKey(season domain.Season, hotspotID string) string {
	return season.String() + "|" + hotspotID
}

// serializeToMessage marshals one ranked entry into a Kafka message.
func serializeToMessage(season domain.Season, rank int, entry domain.HotspotReport, generatedAt time.Time, runID string) (kafkago.Message, error) {
	data, err := json.Marshal(Message{
		Season:        season.String(),
		Rank:          rank,
		GeneratedAt:   generatedAt,
		HotspotReport: entry,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize hotspot report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(season, entry.HotspotID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderSeason, Value: []byte(season.String())},
			{Key: HeaderGeneratedAt, Value: []byte(generatedAt.Format(time.RFC3339))},
			{Key: HeaderRunID, Value: []byte(runID)},
		},
	}, nil
}
