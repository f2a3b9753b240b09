package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"traffic-ca/internal/sim"
)

// Publisher is the subset of mqtt.Client used by MQTTPublisher.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// ConnectMQTT connects to the broker at url (e.g. tcp://localhost:1883).
func ConnectMQTT(url, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(url).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", url)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", url, err)
	}
	return client, nil
}

// MQTTPublisher publishes each snapshot to <prefix>/<road>/tick with QoS 0.
type MQTTPublisher struct {
	client Publisher
	prefix string
	logger *logrus.Entry
}

// NewMQTTPublisher returns a sink publishing through client.
func NewMQTTPublisher(client Publisher, prefix string, logger *logrus.Entry) *MQTTPublisher {
	if prefix == "" {
		prefix = "traffic"
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &MQTTPublisher{client: client, prefix: prefix, logger: logger.WithField("sink", "mqtt")}
}

// Topic returns the topic a road's snapshots are published to.
func (p *MQTTPublisher) Topic(roadName string) string {
	return p.prefix + "/" + roadName + "/tick"
}

// Emit publishes snap without waiting for delivery. Delivery failures are
// logged once the token completes.
func (p *MQTTPublisher) Emit(_ context.Context, snap sim.Snapshot) error {
	payload, err := json.Marshal(NewMessage(snap))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	token := p.client.Publish(p.Topic(snap.Road), 0, false, payload)
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{"road": snap.Road, "tick": snap.Tick}).Warn("Publish failed")
		}
	}()
	return nil
}
