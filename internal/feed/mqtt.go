package feed

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/exerrika/muve/internal/motion"
)

// MQTTConfig describes the broker connection for a live sensor stream.
// Phone apps and IMU bridges publish one JSON wire sample per message.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
}

// connectTimeout bounds how long Start waits for the broker before
// reporting the feed unavailable.
const connectTimeout = 5 * time.Second

// MQTT subscribes to an IMU topic and forwards each decoded sample to the
// engine. Malformed payloads are logged and dropped; they never interrupt
// the stream.
type MQTT struct {
	cfg MQTTConfig
	log *zap.Logger

	mu     sync.Mutex
	client mqtt.Client
}

// NewMQTT creates an MQTT feed. A nil logger is replaced with a no-op one.
func NewMQTT(cfg MQTTConfig, log *zap.Logger) *MQTT {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "muve-feed"
	}
	return &MQTT{cfg: cfg, log: log}
}

// Start implements engine.SensorFeed: connect, subscribe, deliver.
func (m *MQTT) Start(emit func(motion.Sample)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(m.cfg.Broker)
	opts.SetClientID(m.cfg.ClientID)
	if m.cfg.Username != "" {
		opts.SetUsername(m.cfg.Username)
	}
	if m.cfg.Password != "" {
		opts.SetPassword(m.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(connectTimeout) || token.Error() != nil {
		err := token.Error()
		if err == nil {
			err = fmt.Errorf("connect timeout after %v", connectTimeout)
		}
		return fmt.Errorf("connect to broker %s: %w", m.cfg.Broker, err)
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		var w wire
		if err := json.Unmarshal(msg.Payload(), &w); err != nil {
			m.log.Warn("dropping malformed sample",
				zap.String("topic", msg.Topic()), zap.Error(err))
			return
		}
		emit(w.sample())
	}
	if token := client.Subscribe(m.cfg.Topic, m.cfg.QoS, handler); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return fmt.Errorf("subscribe to %s: %w", m.cfg.Topic, token.Error())
	}

	m.client = client
	m.log.Info("mqtt feed started",
		zap.String("broker", m.cfg.Broker), zap.String("topic", m.cfg.Topic))
	return nil
}

// Stop implements engine.SensorFeed.
func (m *MQTT) Stop() {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()
	if client == nil {
		return
	}
	if token := client.Unsubscribe(m.cfg.Topic); token.Wait() && token.Error() != nil {
		m.log.Warn("unsubscribe failed", zap.Error(token.Error()))
	}
	client.Disconnect(250)
	m.log.Info("mqtt feed stopped")
}
