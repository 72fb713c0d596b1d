package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hotelio/hotel-reservation/internal/model"
	"github.com/hotelio/hotel-reservation/internal/store"
)

// Replayer applies relayed mutation events to its own store,
// maintaining a materialized replica of the primary.  Delivery is
// at-least-once and replay is not deduplicated upstream, so every
// handler converges when invoked twice with the same event:
// creation and modification upsert by the primary-assigned id, and
// suppression ignores records that are already gone.
type Replayer struct {
	Store *store.Store
}

// NewReplayer returns a Replayer materializing events into st.
func NewReplayer(st *store.Store) *Replayer {
	return &Replayer{Store: st}
}

// Handle dispatches one event by topic.  It satisfies the broker
// Handler signature.
func (r *Replayer) Handle(ctx context.Context, topic string, ev Event) error {
	switch topic {
	case TopicClients:
		return r.client(ctx, ev)
	case TopicRooms:
		return r.room(ctx, ev)
	case TopicReservations:
		return r.reservation(ctx, ev)
	}
	return fmt.Errorf("unknown topic %q", topic)
}

func (r *Replayer) client(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventCreation, EventModification:
		var c model.Client
		if err := json.Unmarshal(ev.Data, &c); err != nil {
			return fmt.Errorf("unmarshal client: %w", err)
		}
		if c.ID == "" {
			return fmt.Errorf("client event without id")
		}
		return r.Store.Clients.Put(ctx, &c)
	case EventSuppression:
		var d Deleted
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return fmt.Errorf("unmarshal suppression: %w", err)
		}
		if err := r.Store.Clients.Delete(ctx, d.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	case EventRecuperation:
		var l Lookup
		if err := json.Unmarshal(ev.Data, &l); err != nil {
			return fmt.Errorf("unmarshal lookup: %w", err)
		}
		log.Printf("relay: client %s was read on the primary", l.ID)
		return nil
	case EventRecuperationAll:
		clients, err := r.Store.Clients.List(ctx)
		if err != nil {
			return err
		}
		log.Printf("relay: client list read on the primary, replica holds %d", len(clients))
		return nil
	}
	return fmt.Errorf("unknown event type %q", ev.Type)
}

func (r *Replayer) room(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventCreation, EventModification:
		var rm model.Room
		if err := json.Unmarshal(ev.Data, &rm); err != nil {
			return fmt.Errorf("unmarshal room: %w", err)
		}
		if rm.ID == "" {
			return fmt.Errorf("room event without id")
		}
		return r.Store.Rooms.Put(ctx, &rm)
	case EventSuppression:
		var d Deleted
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return fmt.Errorf("unmarshal suppression: %w", err)
		}
		if err := r.Store.Rooms.Delete(ctx, d.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	case EventRecuperation:
		var l Lookup
		if err := json.Unmarshal(ev.Data, &l); err != nil {
			return fmt.Errorf("unmarshal lookup: %w", err)
		}
		log.Printf("relay: room %s was read on the primary", l.ID)
		return nil
	case EventRecuperationAll:
		rooms, err := r.Store.Rooms.List(ctx)
		if err != nil {
			return err
		}
		log.Printf("relay: room list read on the primary, replica holds %d", len(rooms))
		return nil
	}
	return fmt.Errorf("unknown event type %q", ev.Type)
}

func (r *Replayer) reservation(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventCreation, EventModification:
		var res model.Reservation
		if err := json.Unmarshal(ev.Data, &res); err != nil {
			return fmt.Errorf("unmarshal reservation: %w", err)
		}
		if res.ID == "" {
			return fmt.Errorf("reservation event without id")
		}
		return r.Store.Reservations.Put(ctx, &res)
	case EventSuppression:
		var d Deleted
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return fmt.Errorf("unmarshal suppression: %w", err)
		}
		if err := r.Store.Reservations.Delete(ctx, d.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	case EventRecuperation:
		var l Lookup
		if err := json.Unmarshal(ev.Data, &l); err != nil {
			return fmt.Errorf("unmarshal lookup: %w", err)
		}
		log.Printf("relay: reservation %s was read on the primary", l.ID)
		return nil
	case EventRecuperationAll:
		rs, err := r.Store.Reservations.List(ctx)
		if err != nil {
			return err
		}
		log.Printf("relay: reservation list read on the primary, replica holds %d", len(rs))
		return nil
	}
	return fmt.Errorf("unknown event type %q", ev.Type)
}

// StartRelayConsumer connects to RabbitMQ, declares the durable
// per-entity queues and replays every delivered event through the
// Replayer.  It runs a reconnect loop with capped backoff and only
// stops when the context is cancelled.  Processing errors reject
// the offending message without requeueing so the consumer keeps
// making progress.
func StartRelayConsumer(ctx context.Context, url string, rep *Replayer) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("relay-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeAll(ctx, conn, rep); err != nil {
			log.Printf("relay-consumer: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
			continue
		}
	}
}

// consumeAll consumes every relay topic over a single connection,
// one channel per topic, and blocks until a delivery stream closes.
func consumeAll(ctx context.Context, conn *amqp.Connection, rep *Replayer) error {
	done := make(chan error, len(Topics))
	for _, topic := range Topics {
		go func(topic string) {
			done <- consumeTopic(ctx, conn, topic, rep)
		}(topic)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func consumeTopic(ctx context.Context, conn *amqp.Connection, topic string, rep *Replayer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("relay-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(topic, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		var ev Event
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Printf("relay-consumer: bad event on %s: %v", topic, err)
			_ = d.Nack(false, false)
			continue
		}
		if err := rep.Handle(ctx, topic, ev); err != nil {
			log.Printf("relay-consumer: replay on %s failed: %v", topic, err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}
