package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/swiftresponder/swiftresponder/core/events"
	"github.com/swiftresponder/swiftresponder/core/model"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestPublishTopicsAndPayload(t *testing.T) {
	mc := &mockClient{}
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	defer func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } }()

	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", QoS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}

	now := time.Now()
	err = pub.PublishPosition(events.PositionEvent{
		AmbulanceID: "AMB-0001",
		Position:    model.LatLng{Lat: 34.05, Lng: -118.24},
		DistanceKM:  1.2,
		ETAMin:      2,
		Time:        now,
	})
	if err != nil {
		t.Fatalf("publish position: %v", err)
	}
	if err := pub.PublishStatus(events.StatusEvent{From: "IDLE", To: "DISPATCHING", Time: now}); err != nil {
		t.Fatalf("publish status: %v", err)
	}

	if len(mc.published) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(mc.published))
	}
	if mc.published[0].topic != "ambulance/AMB-0001/position" {
		t.Fatalf("unexpected position topic %s", mc.published[0].topic)
	}
	if mc.published[0].qos != 1 {
		t.Fatalf("qos not applied")
	}
	if mc.published[1].topic != "ambulance/dispatch/status" {
		t.Fatalf("unexpected status topic %s", mc.published[1].topic)
	}

	var pos struct {
		AmbulanceID string  `json:"ambulance_id"`
		Lat         float64 `json:"lat"`
	}
	if err := json.Unmarshal(mc.published[0].payload, &pos); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if pos.AmbulanceID != "AMB-0001" || pos.Lat != 34.05 {
		t.Fatalf("bad payload %+v", pos)
	}
}

func TestMockPublisherRecords(t *testing.T) {
	m := NewMockPublisher()
	if err := m.PublishPosition(events.PositionEvent{AmbulanceID: "a"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if m.PositionCount() != 1 {
		t.Fatalf("event not recorded")
	}
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts      *paho.ClientOptions
	published []struct {
		topic   string
		qos     byte
		payload []byte
	}
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.published = append(m.published, struct {
		topic   string
		qos     byte
		payload []byte
	}{topic, qos, payload.([]byte)})
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
