package mqttx

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/adhan"
)

// audioCommand is one playback instruction to the device.
type audioCommand struct {
	Action string `json:"action"` // play | stop | unload
	Handle string `json:"handle"`
	Source string `json:"source,omitempty"`
}

// audioEvent is what the device reports back on the events topic.
type audioEvent struct {
	Handle string `json:"handle"`
	Event  string `json:"event"` // finished | error
}

// AudioTransport drives adhan preview playback on the user's device over
// MQTT: commands out on <prefix>/audio/commands, completion events in on
// <prefix>/audio/events. Each load gets a fresh uuid handle.
type AudioTransport struct {
	client      mqtt.Client
	topicPrefix string
	timeout     time.Duration

	mu   sync.Mutex
	done map[adhan.Handle]func(adhan.Handle)
}

func NewAudioTransport(client mqtt.Client, topicPrefix string) (*AudioTransport, error) {
	t := &AudioTransport{
		client:      client,
		topicPrefix: topicPrefix,
		timeout:     5 * time.Second,
		done:        make(map[adhan.Handle]func(adhan.Handle)),
	}

	eventsTopic := fmt.Sprintf("%s/audio/events", topicPrefix)
	token := client.Subscribe(eventsTopic, 1, t.onEvent)
	if err := waitToken(token, t.timeout); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", eventsTopic, err)
	}
	return t, nil
}

func (t *AudioTransport) LoadAndPlay(source string, done func(adhan.Handle)) (adhan.Handle, error) {
	handle := adhan.Handle(uuid.NewString())

	t.mu.Lock()
	t.done[handle] = done
	t.mu.Unlock()

	if err := t.publish(audioCommand{Action: "play", Handle: string(handle), Source: source}); err != nil {
		t.mu.Lock()
		delete(t.done, handle)
		t.mu.Unlock()
		return "", err
	}
	return handle, nil
}

func (t *AudioTransport) Stop(h adhan.Handle) {
	if err := t.publish(audioCommand{Action: "stop", Handle: string(h)}); err != nil {
		log.Error().Err(err).Str("handle", string(h)).Msg("audio stop failed")
	}
}

func (t *AudioTransport) Unload(h adhan.Handle) {
	t.mu.Lock()
	delete(t.done, h)
	t.mu.Unlock()

	if err := t.publish(audioCommand{Action: "unload", Handle: string(h)}); err != nil {
		log.Error().Err(err).Str("handle", string(h)).Msg("audio unload failed")
	}
}

func (t *AudioTransport) publish(cmd audioCommand) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode audio command: %w", err)
	}
	topic := fmt.Sprintf("%s/audio/commands", t.topicPrefix)
	token := t.client.Publish(topic, 1, false, payload)
	if err := waitToken(token, t.timeout); err != nil {
		return fmt.Errorf("publish audio %s: %w", cmd.Action, err)
	}
	return nil
}

func (t *AudioTransport) onEvent(_ mqtt.Client, msg mqtt.Message) {
	var ev audioEvent
	if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
		log.Warn().Err(err).Msg("discarding malformed audio event")
		return
	}
	if ev.Event != "finished" {
		return
	}

	handle := adhan.Handle(ev.Handle)
	t.mu.Lock()
	done := t.done[handle]
	delete(t.done, handle)
	t.mu.Unlock()

	if done != nil {
		done(handle)
	}
}
