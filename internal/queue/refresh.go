package queue

import (
	"encoding/json"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// RefreshMessage is the payload of an asynchronous refresh trigger.
type RefreshMessage struct {
	RequestedBy int64     `json:"requested_by"`
	Force       bool      `json:"force"`
	RequestedAt time.Time `json:"requested_at"`
}

// PublishRefresh enqueues a refresh trigger for the worker.
func PublishRefresh(ch *amqp091.Channel, msg RefreshMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return Publish(ch, RefreshQueue, body)
}

// ParseRefreshMessage decodes a refresh trigger payload.
func ParseRefreshMessage(body []byte) (RefreshMessage, error) {
	var msg RefreshMessage
	err := json.Unmarshal(body, &msg)
	return msg, err
}
