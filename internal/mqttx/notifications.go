package mqttx

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/model"
)

// NotificationTransport publishes arm requests as retained messages, one
// topic per request identifier. A retained publish replaces whatever was
// retained on that topic, which is exactly the upsert-by-identifier
// contract the scheduler relies on; a retained empty payload clears it.
type NotificationTransport struct {
	client      mqtt.Client
	topicPrefix string

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewNotificationTransport(client mqtt.Client, topicPrefix string) *NotificationTransport {
	return &NotificationTransport{
		client:      client,
		topicPrefix: topicPrefix,
		seen:        make(map[string]struct{}),
	}
}

func (t *NotificationTransport) Schedule(ctx context.Context, req model.NotificationRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode notification %s: %w", req.Identifier, err)
	}

	topic := t.topicFor(req.Identifier)
	token := t.client.Publish(topic, 1, true, payload)
	if err := waitToken(token, timeoutFrom(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", req.Identifier, err)
	}

	t.mu.Lock()
	t.seen[req.Identifier] = struct{}{}
	t.mu.Unlock()

	log.Debug().Str("identifier", req.Identifier).Str("topic", topic).Msg("notification upserted")
	return nil
}

// CancelAll clears every identifier topic this transport has published to.
func (t *NotificationTransport) CancelAll(ctx context.Context) error {
	t.mu.Lock()
	ids := make([]string, 0, len(t.seen))
	for id := range t.seen {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	timeout := timeoutFrom(ctx)
	for _, id := range ids {
		token := t.client.Publish(t.topicFor(id), 1, true, []byte{})
		if err := waitToken(token, timeout); err != nil {
			return fmt.Errorf("clear %s: %w", id, err)
		}
		t.mu.Lock()
		delete(t.seen, id)
		t.mu.Unlock()
	}
	return nil
}

func (t *NotificationTransport) topicFor(identifier string) string {
	return fmt.Sprintf("%s/notifications/%s", t.topicPrefix, identifier)
}

func timeoutFrom(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			return d
		}
		return time.Millisecond
	}
	return 5 * time.Second
}
