package events

// OwnerEvent is delivered to the webhook URL an owner registered on an order
// or rental.
type OwnerEvent struct {
	Url        string
	Event      string
	Properties map[string]interface{}
}

func (e *OwnerEvent) EventType() string {
	return e.Event
}
