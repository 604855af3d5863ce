// Package notifications delivers best-effort JSON POSTs to owner webhooks.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/flokiorg/lokirent/events"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/pkg/version"
)

type Notifier interface {
	// Notify queues event for url. It never blocks and never fails the caller.
	Notify(url string, event string, properties map[string]interface{})
}

type webhookNotifier struct {
	queue  *events.EventQueue
	client *http.Client
	wg     sync.WaitGroup
}

func NewWebhookNotifier(bufferSize int, timeout time.Duration) *webhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &webhookNotifier{
		queue: events.NewEventQueue(bufferSize),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (n *webhookNotifier) Notify(url string, event string, properties map[string]interface{}) {
	if url == "" {
		return
	}
	if !n.queue.Enqueue(&events.OwnerEvent{Url: url, Event: event, Properties: properties}) {
		logger.Logger.Warn().Str("event", event).Msg("Notification queue full or closed, dropping owner webhook")
	}
}

// Start drains the queue until ctx is cancelled or Stop is called.
func (n *webhookNotifier) Start(ctx context.Context) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for {
			event, err := n.queue.NextEvent(ctx)
			if err != nil {
				return
			}
			ownerEvent, ok := event.(*events.OwnerEvent)
			if !ok {
				continue
			}
			if err := n.deliver(ctx, ownerEvent); err != nil {
				logger.Logger.Warn().Err(err).
					Str("event", ownerEvent.Event).
					Msg("Failed to deliver owner webhook")
			}
		}
	}()
}

func (n *webhookNotifier) Stop() {
	n.queue.Close()
	n.wg.Wait()
}

func (n *webhookNotifier) deliver(ctx context.Context, ownerEvent *events.OwnerEvent) error {
	payload := map[string]interface{}{}
	for key, value := range ownerEvent.Properties {
		payload[key] = value
	}
	payload["event"] = ownerEvent.Event

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ownerEvent.Url, bytes.NewReader(payloadBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, io.LimitReader(res.Body, 64*1024))

	if res.StatusCode >= 300 {
		return fmt.Errorf("owner webhook returned status %d", res.StatusCode)
	}
	logger.Logger.Debug().Str("event", ownerEvent.Event).Msg("Delivered owner webhook")
	return nil
}
