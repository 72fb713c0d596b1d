package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hotelio/hotel-reservation/internal/queue"
	"github.com/hotelio/hotel-reservation/internal/store"
)

// The replica rebuilds a copy of the hotel state from the event relay.
// It consumes every entity topic and applies creation, modification and
// suppression events to an in-memory store.  Replay is idempotent, so a
// redelivered event never yields a second record.
func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep := queue.NewReplayer(store.NewMemory())
	url := queue.BrokerURL()

	log.Printf("replica consuming from %s", url)
	if err := queue.StartRelayConsumer(ctx, url, rep); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
