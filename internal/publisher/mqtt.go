package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jgoulah/callcharts/internal/config"
	"github.com/jgoulah/callcharts/pkg/models"
)

// client is the part of mqtt.Client the publisher uses
type client interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher pushes saved chart values to an MQTT broker
type Publisher struct {
	client      client
	topicPrefix string
	logger      *zap.Logger
}

// New connects to the broker described by cfg
func New(cfg config.MQTTConfig, topicPrefix string, logger *zap.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("MQTT is not enabled in config")
	}
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Configure MQTT client options
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID("callcharts-" + uuid.NewString()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	// Create and connect client
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	logger.Info("Connected to MQTT broker", zap.String("broker", cfg.Broker))
	return newWithClient(c, topicPrefix, logger), nil
}

func newWithClient(c client, topicPrefix string, logger *zap.Logger) *Publisher {
	if topicPrefix == "" {
		topicPrefix = "callcharts"
	}
	return &Publisher{client: c, topicPrefix: topicPrefix, logger: logger}
}

// Payload is the message published for a saved entry
type Payload struct {
	MessageID string         `json:"message_id"`
	Email     string         `json:"email"`
	ChartID   models.ChartID `json:"chart_id"`
	Values    models.Series  `json:"values"`
	UpdatedAt string         `json:"updated_at"`
}

// UserKey returns the topic segment for email: a name-based UUID, so each user
// keeps their own retained message and the address stays out of the topic tree.
func UserKey(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+models.NormalizeEmail(email))).String()
}

// Topic returns the topic an entry for (email, chart) is published on
func (p *Publisher) Topic(email string, chart models.ChartID) string {
	return fmt.Sprintf("%s/%s/%s/values", p.topicPrefix, chart, UserKey(email))
}

// Publish sends a saved entry to the broker and waits for delivery
func (p *Publisher) Publish(entry models.SavedEntry) error {
	payload := Payload{
		MessageID: uuid.NewString(),
		Email:     entry.Email,
		ChartID:   entry.ChartID,
		Values:    entry.Values,
		UpdatedAt: entry.UpdatedAt.UTC().Format(time.RFC3339),
	}

	// Marshal to JSON
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	topic := p.Topic(entry.Email, entry.ChartID)
	token := p.client.Publish(topic, 1, true, body)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	p.logger.Debug("Published entry", zap.String("topic", topic), zap.String("message_id", payload.MessageID))
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
