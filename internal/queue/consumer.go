package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const maxBackoff = 30 * time.Second

// StartConsumer consumes QueueName and appends every event to logPath as
// one JSON line. It reconnects with exponential backoff and returns only
// when ctx is done.
func StartConsumer(ctx context.Context, url, logPath string, log zerolog.Logger) error {
	log = log.With().Str("component", "consumer").Logger()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(logPath), err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()
	sink := zerolog.New(f).With().Timestamp().Logger()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial broker failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = time.Second

		err = consume(ctx, conn, sink, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consume(ctx context.Context, conn *amqp.Connection, sink, log zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("set qos failed")
	}
	if err := declare(ch); err != nil {
		return err
	}
	msgs, err := ch.ConsumeWithContext(ctx, QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range msgs {
		if err := record(sink, d.Body); err != nil {
			log.Error().Err(err).Str("message_id", d.MessageId).Msg("reject message")
			_ = d.Nack(false, false) // no requeue, a bad payload would loop
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// record writes one event line to sink.
func record(sink zerolog.Logger, body []byte) error {
	var ev RentalEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	e := sink.Info().
		Str("event_id", ev.ID).
		Str("type", ev.Type).
		Uint64("customer_id", ev.CustomerID).
		Time("occurred_at", ev.OccurredAt)
	if ev.RentalID != 0 {
		e = e.Uint64("rental_id", ev.RentalID)
	}
	if ev.PaymentID != 0 {
		e = e.Uint64("payment_id", ev.PaymentID)
	}
	if ev.InventoryID != 0 {
		e = e.Uint64("inventory_id", ev.InventoryID)
	}
	if ev.FilmID != 0 {
		e = e.Uint64("film_id", ev.FilmID)
	}
	if ev.StoreID != 0 {
		e = e.Uint64("store_id", ev.StoreID)
	}
	if ev.StaffID != 0 {
		e = e.Uint64("staff_id", ev.StaffID)
	}
	if ev.Amount != "" {
		e = e.Str("amount", ev.Amount)
	}
	e.Msg(ev.Type)
	return nil
}
