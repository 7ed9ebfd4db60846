// Package mqttx carries the MQTT side of the engine: the notification
// transport (retained publishes keyed by request identifier) and the audio
// command channel to the user's device.
package mqttx

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

var messagePubHandler mqtt.MessageHandler = func(client mqtt.Client, msg mqtt.Message) {
	log.Debug().Str("topic", msg.Topic()).Msg("received mqtt message")
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Error().Err(err).Msg("MQTT connection lost")
}

// Connect dials the broker and returns a ready client.
func Connect(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetDefaultPublishHandler(messagePubHandler)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// waitToken waits for a publish/subscribe token with a deadline.
func waitToken(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt operation timed out after %s", timeout)
	}
	return token.Error()
}
