package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"oled-menu-ctrl/config"
	"oled-menu-ctrl/protocol"

	mqtt "github.com/soypat/natiu-mqtt"
)

const brokerTimeout = 5 * time.Second

// eventMessage is the JSON payload published for each event.
type eventMessage struct {
	Type    string    `json:"type"`
	Depth   uint8     `json:"depth"`
	Index   uint8     `json:"index"`
	Editing bool      `json:"editing"`
	Value   int32     `json:"value"`
	At      time.Time `json:"at"`
}

func newEventMessage(e protocol.Event, at time.Time) eventMessage {
	return eventMessage{
		Type:    e.Type.String(),
		Depth:   e.Depth,
		Index:   e.Index,
		Editing: e.Editing,
		Value:   e.Value,
		At:      at,
	}
}

// publisher sends events to an MQTT broker at QoS 0.
type publisher struct {
	conn   net.Conn
	client *mqtt.Client
	flags  mqtt.PacketFlags
	vars   mqtt.VariablesPublish
	logger *slog.Logger
}

func dialBroker(cfg config.TraceConfig, logger *slog.Logger) (*publisher, error) {
	conn, err := net.DialTimeout("tcp", cfg.Broker, brokerTimeout)
	if err != nil {
		return nil, err
	}
	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 4096)},
		OnPub: func(_ mqtt.Header, varPub mqtt.VariablesPublish, _ io.Reader) error {
			logger.Debug("received message", "topic", string(varPub.TopicName))
			return nil
		},
	})

	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(cfg.ClientID))
	conn.SetDeadline(time.Now().Add(brokerTimeout))
	if err := client.StartConnect(conn, &varconn); err != nil {
		conn.Close()
		return nil, err
	}
	for retries := 50; retries > 0 && !client.IsConnected(); retries-- {
		time.Sleep(100 * time.Millisecond)
		if err := client.HandleNext(); err != nil {
			logger.Warn("mqtt handle", "err", err)
		}
	}
	if !client.IsConnected() {
		conn.Close()
		if err := client.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("mqtt: connect timed out")
	}

	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info("mqtt connected", "broker", cfg.Broker, "topic", cfg.Topic)
	return &publisher{
		conn:   conn,
		client: client,
		flags:  flags,
		vars:   mqtt.VariablesPublish{TopicName: []byte(cfg.Topic)},
		logger: logger,
	}, nil
}

func (p *publisher) Publish(e protocol.Event) error {
	payload, err := json.Marshal(newEventMessage(e, time.Now()))
	if err != nil {
		return err
	}
	p.conn.SetDeadline(time.Now().Add(brokerTimeout))
	p.vars.PacketIdentifier++
	return p.client.PublishPayload(p.flags, p.vars, payload)
}

func (p *publisher) Close() error {
	return p.conn.Close()
}
