// Package mqtt publishes live tracking telemetry to an MQTT broker using
// Eclipse Paho.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/swiftresponder/swiftresponder/core/events"
	"github.com/swiftresponder/swiftresponder/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string      `json:"broker" yaml:"broker"`
	ClientID    string      `json:"client_id" yaml:"client_id"`
	Username    string      `json:"username" yaml:"username"`
	Password    string      `json:"password" yaml:"password"`
	TopicPrefix string      `json:"topic_prefix" yaml:"topic_prefix"`
	QoS         byte        `json:"qos" yaml:"qos"`
	UseTLS      bool        `json:"use_tls" yaml:"use_tls"`
	ClientCert  string      `json:"client_cert" yaml:"client_cert"`
	ClientKey   string      `json:"client_key" yaml:"client_key"`
	CABundle    string      `json:"ca_bundle" yaml:"ca_bundle"`
	TLSConfig   *tls.Config `json:"-" yaml:"-"`
}

// SetDefaults fills zero values with sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "swift-responder"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "ambulance"
	}
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher implements telemetry.Publisher over Eclipse Paho.
type PahoPublisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPahoPublisher connects to the MQTT broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoPublisher{cli: c, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// PublishPosition sends a position sample to the ambulance position topic.
func (p *PahoPublisher) PublishPosition(ev events.PositionEvent) error {
	payload := struct {
		AmbulanceID string  `json:"ambulance_id"`
		Lat         float64 `json:"lat"`
		Lng         float64 `json:"lng"`
		DistanceKM  float64 `json:"distance_km"`
		ETAMin      float64 `json:"eta_min"`
		Timestamp   int64   `json:"timestamp"`
	}{
		AmbulanceID: ev.AmbulanceID,
		Lat:         ev.Position.Lat,
		Lng:         ev.Position.Lng,
		DistanceKM:  ev.DistanceKM,
		ETAMin:      ev.ETAMin,
		Timestamp:   ev.Time.UnixMilli(),
	}
	topic := fmt.Sprintf("%s/%s/position", p.prefix, ev.AmbulanceID)
	return p.publish(topic, payload)
}

// PublishStatus sends a tracker transition to the dispatch status topic.
func (p *PahoPublisher) PublishStatus(ev events.StatusEvent) error {
	payload := struct {
		From      string `json:"from"`
		To        string `json:"to"`
		Timestamp int64  `json:"timestamp"`
	}{
		From:      ev.From,
		To:        ev.To,
		Timestamp: ev.Time.UnixMilli(),
	}
	return p.publish(p.prefix+"/dispatch/status", payload)
}

func (p *PahoPublisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	token := p.cli.Publish(topic, p.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		p.log.Errorf("publish to %s failed: %v", topic, err)
		return err
	}
	p.log.Debugf("published to %s", topic)
	return nil
}

// Close gracefully closes the MQTT connection.
func (p *PahoPublisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
