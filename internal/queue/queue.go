package queue

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/lumenintel/orrery/backend/internal/util"
	"github.com/lumenintel/orrery/backend/pkg/logger"
)

// RefreshQueue carries asynchronous aggregate refresh triggers from the
// admin API to the worker.
const RefreshQueue = "refresh_queue"

// Queues lists every queue the worker consumes.
var Queues = []string{RefreshQueue}

func Init() *amqp091.Connection {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnv("RABBITMQ_PORT")

	connURL := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

// SetupQueues declares each queue plus its dead-letter and retry queues.
// Messages on the retry queue expire back onto the main queue.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("declaring queue %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		_, err = ch.QueueDeclare(dlqName, true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("declaring queue %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err = ch.QueueDeclare(retryName, true, false, false, false, amqp091.Table{
			"x-message-ttl":             int32(10000),
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": name,
		})
		if err != nil {
			return fmt.Errorf("declaring queue %s: %w", retryName, err)
		}
	}

	return nil
}

// Publish sends a persistent message to the named queue.
func Publish(ch *amqp091.Channel, queueName string, data []byte) error {
	return util.RetryErr(3, func() error {
		return ch.Publish(
			"",
			queueName,
			false,
			false,
			amqp091.Publishing{
				ContentType:  "application/json",
				Body:         data,
				DeliveryMode: amqp091.Persistent,
				Timestamp:    time.Now(),
			},
		)
	})
}
