package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/dbehnke/p25-cc/pkg/logger"
)

// Config holds MQTT publisher configuration
type Config struct {
	Enabled     bool
	Broker      string
	TopicPrefix string
	ClientID    string
	Username    string
	Password    string
	QoS         byte
	Retained    bool
}

// Publisher handles MQTT event publishing for the control channel engine.
type Publisher struct {
	config Config
	log    *logger.Logger
	client mqtt.Client
}

// Event types for MQTT publishing

// GrantEvent represents a voice channel grant issued to a talkgroup or unit.
type GrantEvent struct {
	DstId     uint32    `json:"dst_id"`
	ChannelNo uint16    `json:"channel_no"`
	Reused    bool      `json:"reused"`
	Timestamp time.Time `json:"timestamp"`
}

// GrantReleasedEvent represents a voice channel grant being released.
type GrantReleasedEvent struct {
	DstId     uint32    `json:"dst_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// RegistrationEvent represents a unit registering or deregistering.
type RegistrationEvent struct {
	SrcId      uint32    `json:"src_id"`
	Registered bool      `json:"registered"`
	Timestamp  time.Time `json:"timestamp"`
}

// DenyEvent represents a DENY_RSP the engine emitted.
type DenyEvent struct {
	SrcId       uint32    `json:"src_id"`
	DstId       uint32    `json:"dst_id"`
	ServiceType byte      `json:"service_type"`
	Reason      byte      `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// AdjSiteEvent represents a change in an adjacent site's liveness state.
type AdjSiteEvent struct {
	SiteId    byte      `json:"site_id"`
	Failed    bool      `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a new MQTT publisher. The broker connection is opened
// lazily in Start, not here, so New never fails and callers can build
// the publisher before deciding whether to run it.
func New(config Config, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	return &Publisher{
		config: config,
		log:    log.WithComponent("mqtt"),
	}
}

// Start connects to the configured broker.
func (p *Publisher) Start(ctx context.Context) error {
	if !p.config.Enabled {
		p.log.Info("MQTT publisher disabled")
		return nil
	}

	p.log.Info("Starting MQTT publisher",
		logger.String("broker", p.config.Broker),
		logger.String("client_id", p.config.ClientID))

	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.config.Broker)
	opts.SetClientID(p.config.ClientID)
	if p.config.Username != "" {
		opts.SetUsername(p.config.Username)
	}
	if p.config.Password != "" {
		opts.SetPassword(p.config.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		p.log.Info("Connected to MQTT broker")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.log.Warn("MQTT connection lost", logger.Error(err))
	})

	p.client = mqtt.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("timed out connecting to MQTT broker %s", p.config.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return nil
}

// Stop disconnects from the broker.
func (p *Publisher) Stop() {
	if !p.config.Enabled || p.client == nil {
		return
	}

	p.log.Info("Stopping MQTT publisher")
	p.client.Disconnect(250)
}

// PublishGrant publishes a voice channel grant event.
func (p *Publisher) PublishGrant(event GrantEvent) error {
	if !p.config.Enabled {
		return nil
	}
	return p.publish(p.formatTopic("grants/issued"), event)
}

// PublishGrantReleased publishes a grant release event.
func (p *Publisher) PublishGrantReleased(event GrantReleasedEvent) error {
	if !p.config.Enabled {
		return nil
	}
	return p.publish(p.formatTopic("grants/released"), event)
}

// PublishRegistration publishes a unit registration event.
func (p *Publisher) PublishRegistration(event RegistrationEvent) error {
	if !p.config.Enabled {
		return nil
	}
	return p.publish(p.formatTopic("registrations"), event)
}

// PublishDeny publishes a deny event.
func (p *Publisher) PublishDeny(event DenyEvent) error {
	if !p.config.Enabled {
		return nil
	}
	return p.publish(p.formatTopic("denies"), event)
}

// PublishAdjSite publishes an adjacent-site liveness change.
func (p *Publisher) PublishAdjSite(event AdjSiteEvent) error {
	if !p.config.Enabled {
		return nil
	}
	return p.publish(p.formatTopic("adjacent-sites"), event)
}

// publish publishes an event to a topic
func (p *Publisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to serialize event",
			logger.String("topic", topic),
			logger.Error(err))
		return err
	}

	if p.client == nil || !p.client.IsConnected() {
		p.log.Debug("MQTT client not connected, dropping event",
			logger.String("topic", topic))
		return nil
	}

	token := p.client.Publish(topic, p.config.QoS, p.config.Retained, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		p.log.Error("Failed to publish MQTT event",
			logger.String("topic", topic),
			logger.Error(err))
		return err
	}

	return nil
}

// formatTopic formats a topic with the configured prefix
func (p *Publisher) formatTopic(suffix string) string {
	prefix := strings.TrimSuffix(p.config.TopicPrefix, "/")
	if prefix == "" {
		return suffix
	}
	return fmt.Sprintf("%s/%s", prefix, suffix)
}
