package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"

	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/events"
	"github.com/flokiorg/lokirent/logger"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

type RabbitPublisher struct {
	conn     *amqp091.Connection
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &RabbitPublisher{conn: conn, exchange: exchange}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	return ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
}

func (p *RabbitPublisher) Close() error {
	return p.conn.Close()
}

// Dispatcher is a Notifier with a background delivery loop.
type Dispatcher interface {
	Notifier
	Start(ctx context.Context)
	Stop()
}

// brokerNotifier forwards every owner event to next and mirrors rental
// lifecycle events onto a message broker, routed by event name.
type brokerNotifier struct {
	next      Dispatcher
	publisher Publisher
	queue     *events.EventQueue
	wg        sync.WaitGroup
}

func NewBrokerNotifier(next Dispatcher, publisher Publisher, bufferSize int) *brokerNotifier {
	return &brokerNotifier{
		next:      next,
		publisher: publisher,
		queue:     events.NewEventQueue(bufferSize),
	}
}

func (n *brokerNotifier) Notify(url string, event string, properties map[string]interface{}) {
	n.next.Notify(url, event, properties)

	// challenge URLs prove control of the owner's endpoint and stay private
	if event == constants.WEBHOOK_EVENT_CHALLENGE {
		return
	}
	if !n.queue.Enqueue(&events.OwnerEvent{Event: event, Properties: properties}) {
		logger.Logger.Warn().Str("event", event).Msg("Broker queue full or closed, dropping event")
	}
}

func (n *brokerNotifier) Start(ctx context.Context) {
	n.next.Start(ctx)

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
			if err := n.publish(ctx, ownerEvent); err != nil {
				logger.Logger.Warn().Err(err).Str("event", ownerEvent.Event).Msg("Failed to publish event to broker")
			}
		}
	}()
}

func (n *brokerNotifier) Stop() {
	n.queue.Close()
	n.wg.Wait()
	n.next.Stop()
	if err := n.publisher.Close(); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to close broker connection")
	}
}

func (n *brokerNotifier) publish(ctx context.Context, ownerEvent *events.OwnerEvent) error {
	payload := map[string]interface{}{}
	for key, value := range ownerEvent.Properties {
		payload[key] = value
	}
	payload["event"] = ownerEvent.Event

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return n.publisher.Publish(ctx, ownerEvent.Event, body)
}
