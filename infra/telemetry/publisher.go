// Package telemetry publishes run lifecycle data over MQTT so external
// dashboards can follow a run without scraping the process. Stats
// snapshots stream to <prefix>/runs/<id>/stats and the final report is
// published, optionally retained, to <prefix>/runs/<id>/report.
package telemetry

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/ankit-iitb/sandstorm-simulator/core/metrics"
	"github.com/ankit-iitb/sandstorm-simulator/core/report"
	"github.com/ankit-iitb/sandstorm-simulator/infra/logger"
)

// pahoClient is the slice of the paho API the publisher needs.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends run telemetry to an MQTT broker. It implements the
// metrics sink interfaces, so it can sit behind the event collector.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewPublisher connects to the MQTT broker from the given config.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("telemetry")
	opts.OnConnect = func(paho.Client) {
		log.Infof("telemetry connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("telemetry connection lost: %v", err)
	}
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{
		cli:        c,
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.RetainReports,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// NewClientOptions builds paho client options from Config.
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

// LoadTLSConfig loads the TLS configuration from the file paths in the
// config.
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

// statsMessage is the wire form of a stats snapshot.
type statsMessage struct {
	RunID       string `json:"run_id"`
	Policy      string `json:"policy"`
	Submitted   uint64 `json:"submitted"`
	Dispatched  uint64 `json:"dispatched"`
	Requeued    uint64 `json:"requeued"`
	Completed   uint64 `json:"completed"`
	Backlog     int    `json:"backlog"`
	ClockCycles uint64 `json:"clock_cycles"`
}

// RecordDispatchStats publishes one stats snapshot.
func (p *Publisher) RecordDispatchStats(st coremetrics.DispatchStats) error {
	msg := statsMessage{
		RunID:       st.RunID,
		Policy:      st.Policy,
		Submitted:   st.Submitted,
		Dispatched:  st.Dispatched,
		Requeued:    st.Requeued,
		Completed:   st.Completed,
		Backlog:     st.Backlog,
		ClockCycles: st.At,
	}
	return p.publish(fmt.Sprintf("%s/runs/%s/stats", p.prefix, st.RunID), msg, false)
}

// RecordReport publishes the final report of a run, retained when
// configured, so late subscribers still see the outcome.
func (p *Publisher) RecordReport(r report.Report) error {
	return p.publish(fmt.Sprintf("%s/runs/%s/report", p.prefix, r.RunID), r, p.retain)
}

func (p *Publisher) publish(topic string, msg any, retained bool) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, retained, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		p.log.Errorf("publish %s attempt %d failed: %v", topic, attempt+1, publishErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	return publishErr
}

// Close gracefully disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
