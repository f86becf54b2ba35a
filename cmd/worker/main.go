package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumenintel/orrery/backend/internal/queue"
	"github.com/lumenintel/orrery/backend/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lumenintel/orrery/backend/pkg/leaselock"
	"github.com/lumenintel/orrery/backend/pkg/logger"
	"github.com/lumenintel/orrery/backend/pkg/logger/console"
	storepgx "github.com/lumenintel/orrery/backend/pkg/store/pgx"
	"github.com/lumenintel/orrery/backend/pkg/viz/refresh"

	"github.com/jackc/pgx/v5/pgxpool"
)

// refreshLockKey matches the API's refresh lease so a queued refresh and a
// synchronous one never run the same relations at once.
const refreshLockKey = "viz:refresh"

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	db := storepgx.New(pgConn)
	manager := refresh.NewManager(refresh.Params{
		Aggregates: db,
		Audit:      db,
	})
	locks := leaselock.New(pgConn)

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	// Relations that have never been computed block every visualization
	// read, so populate them before consuming anything.
	initializeIfNeeded(ctx, locks, manager)

	intervalMin := util.GetEnvNumeric("REFRESH_INTERVAL_MIN", 15)
	go refreshTicker(ctx, locks, manager, time.Duration(intervalMin)*time.Minute)

	logger.Info("Listening for messages")

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.RefreshQueue,
		queue.RefreshQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.RefreshQueue, "err", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed", "queue", queue.RefreshQueue)
					return
				}

				startTime := time.Now()
				logger.Info("Received message", "queue", queue.RefreshQueue)

				processingErr := processRefreshMessage(ctx, locks, manager, msg.Body)
				if processingErr != nil {
					logger.Error("Error processing message", "queue", queue.RefreshQueue, "err", processingErr)
					handleProcessingError(consumerCh, msg, queue.RefreshQueue)
				} else {
					if err := msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully",
						"queue", queue.RefreshQueue,
						"duration", time.Since(startTime).String(),
					)
				}
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func initializeIfNeeded(ctx context.Context, locks *leaselock.Client, manager *refresh.Manager) {
	reports, err := manager.CheckStaleness(ctx, refresh.DefaultStaleThreshold)
	if err != nil {
		logger.Error("Failed to check aggregate staleness on startup", "err", err)
		return
	}

	needed := false
	for _, report := range reports {
		if report.NeverComputed {
			needed = true
			break
		}
	}
	if !needed {
		return
	}

	logger.Info("Uninitialized aggregate relations found, running first population")
	err = locks.WithLease(ctx, refreshLockKey, leaselock.Options{Wait: false}, func(ctx context.Context) error {
		manager.Initialize(ctx)
		return nil
	})
	if errors.Is(err, leaselock.ErrBusy) {
		logger.Info("Another process is already populating aggregates")
	} else if err != nil {
		logger.Error("Failed to populate aggregates", "err", err)
	}
}

func refreshTicker(ctx context.Context, locks *leaselock.Client, manager *refresh.Manager, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			err := locks.WithLease(ctx, refreshLockKey, leaselock.Options{Wait: false}, func(ctx context.Context) error {
				_, _, err := manager.SmartRefresh(ctx, refresh.DefaultStaleThreshold)
				return err
			})
			if errors.Is(err, leaselock.ErrBusy) {
				logger.Debug("Refresh already in progress, skipping tick")
			} else if err != nil {
				logger.Error("Scheduled refresh failed", "err", err)
			}
		}
	}
}

func processRefreshMessage(ctx context.Context, locks *leaselock.Client, manager *refresh.Manager, body []byte) error {
	msg, err := queue.ParseRefreshMessage(body)
	if err != nil {
		return err
	}

	err = locks.WithLease(ctx, refreshLockKey, leaselock.Options{Wait: false}, func(ctx context.Context) error {
		if msg.Force {
			manager.RefreshAll(ctx)
			return nil
		}
		_, _, err := manager.SmartRefresh(ctx, refresh.DefaultStaleThreshold)
		return err
	})
	if errors.Is(err, leaselock.ErrBusy) {
		// A run is underway; the queued request is satisfied by it.
		logger.Info("Refresh already in progress, dropping queued trigger", "requested_by", msg.RequestedBy)
		return nil
	}
	return err
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// If message has been retried 10 times, send to dead-letter
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
