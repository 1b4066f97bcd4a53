package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventsChannel carries simulation lifecycle events between server instances.
const EventsChannel = "simulation_events"

// SimulationEvent is published whenever a result is saved.
type SimulationEvent struct {
	Type            string    `json:"type"`
	ResultID        string    `json:"result_id"`
	M1              float64   `json:"m1"`
	M2              float64   `json:"m2"`
	CollisionCount  int       `json:"collision_count"`
	PiApproximation *float64  `json:"pi_approximation"`
	CreatedAt       time.Time `json:"created_at"`
}

// PublishSimulationEvent publishes evt on EventsChannel. A nil client is a no-op.
func PublishSimulationEvent(ctx context.Context, rdb *redis.Client, evt SimulationEvent) error {
	if rdb == nil {
		return nil
	}
	if evt.Type == "" {
		evt.Type = "simulation_saved"
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal simulation event: %w", err)
	}
	if err := rdb.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish simulation event: %w", err)
	}
	return nil
}

// StartEventSubscriber subscribes to EventsChannel and broadcasts incoming
// events to hub. It returns once the subscription is confirmed.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) error {
	if rdb == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return nil
	}

	pubsub := rdb.Subscribe(ctx, EventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", EventsChannel, err)
	}

	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", EventsChannel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopped", EventsChannel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt SimulationEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					log.Printf("[WS] invalid event payload: %v", err)
					continue
				}

				switch evt.Type {
				case "simulation_saved", "simulation_deleted":
					hub.Broadcast(evt)
				default:
					log.Printf("[WS] unknown event type: %s", evt.Type)
				}
			}
		}
	}()
	return nil
}
