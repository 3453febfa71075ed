package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallet-behavior-engine/internal/domain/entity"
	"wallet-behavior-engine/internal/infrastructure/config"
	"wallet-behavior-engine/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSConsumer consumes wallet analysis requests from NATS JetStream and
// publishes resolved behavior labels
type NATSConsumer struct {
	conn      *nats.Conn
	js        nats.JetStreamContext
	sub       *nats.Subscription
	config    *config.NATSConfig
	logger    *logger.Logger
	msgChan   chan *entity.AnalysisRequest
	isRunning bool
}

// NewNATSConsumer creates a new NATS consumer
func NewNATSConsumer(cfg *config.NATSConfig, logger *logger.Logger) *NATSConsumer {
	return &NATSConsumer{
		config:  cfg,
		logger:  logger.WithComponent("nats-consumer"),
		msgChan: make(chan *entity.AnalysisRequest, cfg.MaxPendingMessages),
	}
}

// Connect connects to NATS server and sets up the request subscription
func (n *NATSConsumer) Connect(ctx context.Context) error {
	if !n.config.Enabled {
		n.logger.Info("NATS is disabled, skipping connection")
		return nil
	}

	n.logger.Info("Connecting to NATS server", zap.String("url", n.config.URL))

	opts := []nats.Option{
		nats.Name("wallet-behavior-engine"),
		nats.Timeout(n.config.ConnectTimeout),
		nats.ReconnectWait(n.config.ReconnectDelay),
		nats.MaxReconnects(n.config.ReconnectAttempts),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			n.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.logger.Error("Failed to connect to NATS", zap.Error(err))
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n.conn = conn

	// Try JetStream first, if not available fall back to core NATS
	js, err := conn.JetStream()
	if err != nil {
		n.logger.Warn("JetStream not available, using core NATS", zap.Error(err))
		return n.setupCoreNATSSubscription()
	}

	n.js = js
	return n.setupJetStreamSubscription()
}

// setupJetStreamSubscription binds a durable pull consumer on the request subject
func (n *NATSConsumer) setupJetStreamSubscription() error {
	subject := fmt.Sprintf("%s.requests", n.config.SubjectPrefix)
	durable := n.config.ConsumerGroup

	n.logger.Info("Setting up JetStream subscription",
		zap.String("subject", subject),
		zap.String("consumer", durable),
		zap.String("stream", n.config.StreamName))

	sub, err := n.js.PullSubscribe(subject, durable, nats.Bind(n.config.StreamName, durable))
	if err != nil {
		n.logger.Warn("Failed to bind to durable consumer, falling back to core NATS", zap.Error(err))
		return n.setupCoreNATSSubscription()
	}

	n.sub = sub
	n.isRunning = true

	// Start message processing
	go n.processJetStreamMessages()

	n.logger.Info("Successfully connected to NATS JetStream",
		zap.String("subject", subject),
		zap.String("consumer", durable))

	return nil
}

// processJetStreamMessages processes messages from the JetStream pull subscription
func (n *NATSConsumer) processJetStreamMessages() {
	n.logger.Info("Starting JetStream message processing")

	for n.isRunning {
		msgs, err := n.sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil {
			if err == nats.ErrTimeout {
				continue
			}
			n.logger.Error("Failed to fetch messages", zap.Error(err))
			continue
		}

		n.logger.Debug("Fetched messages from JetStream", zap.Int("count", len(msgs)))

		for _, msg := range msgs {
			n.handleMessage(msg)
		}
	}

	n.logger.Info("Stopped JetStream message processing")
}

// setupCoreNATSSubscription sets up a queue subscription without JetStream
func (n *NATSConsumer) setupCoreNATSSubscription() error {
	subject := fmt.Sprintf("%s.requests", n.config.SubjectPrefix)
	queueGroup := n.config.ConsumerGroup

	n.logger.Info("Setting up core NATS subscription",
		zap.String("subject", subject),
		zap.String("queue_group", queueGroup))

	sub, err := n.conn.QueueSubscribe(subject, queueGroup, func(msg *nats.Msg) {
		n.handleMessage(msg)
	})

	if err != nil {
		n.logger.Error("Failed to subscribe to subject", zap.Error(err))
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	n.sub = sub
	n.isRunning = true

	n.logger.Info("Successfully connected to core NATS",
		zap.String("subject", subject),
		zap.String("queue_group", queueGroup))

	return nil
}

// handleMessage decodes an analysis request and hands it to the processing channel
func (n *NATSConsumer) handleMessage(msg *nats.Msg) {
	var request entity.AnalysisRequest
	if err := json.Unmarshal(msg.Data, &request); err != nil {
		n.logger.Error("Failed to unmarshal analysis request", zap.Error(err))
		if msg.Reply != "" {
			msg.Respond([]byte("ERROR: Failed to unmarshal"))
		}
		return
	}

	address, _ := request.Wallet["address"].(string)
	n.logger.Debug("Received analysis request",
		zap.String("address", address),
		zap.String("stage", request.Stage))

	select {
	case n.msgChan <- &request:
		// Acknowledge if it's a JetStream message
		if msg.Reply != "" {
			msg.Ack()
		}
	default:
		// Channel is full
		n.logger.Warn("Message channel is full, dropping request", zap.String("address", address))
		if msg.Reply != "" {
			msg.Nak()
		}
	}
}

// PublishReport publishes a resolved behavior label on the labels subject
func (n *NATSConsumer) PublishReport(ctx context.Context, report *entity.WalletReport) error {
	if n.conn == nil || !n.conn.IsConnected() {
		return fmt.Errorf("not connected to NATS")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet report: %w", err)
	}

	subject := fmt.Sprintf("%s.labels", n.config.SubjectPrefix)
	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish wallet report: %w", err)
	}

	n.logger.Debug("Published behavior label",
		zap.String("subject", subject),
		zap.String("address", report.Address),
		zap.String("class", string(report.Class)))

	return nil
}

// Disconnect disconnects from NATS server
func (n *NATSConsumer) Disconnect() error {
	n.isRunning = false

	if n.sub != nil {
		n.sub.Unsubscribe()
		n.sub = nil
	}
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
	close(n.msgChan)
	n.logger.Info("Disconnected from NATS")
	return nil
}

// IsConnected checks if connected to NATS
func (n *NATSConsumer) IsConnected() bool {
	return n.isRunning && n.conn != nil && n.conn.IsConnected()
}

// GetMessageChannel returns the request channel
func (n *NATSConsumer) GetMessageChannel() <-chan *entity.AnalysisRequest {
	return n.msgChan
}
