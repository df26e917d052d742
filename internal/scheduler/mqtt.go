package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/model"
)

// topic layout the device agents subscribe to
const (
	alarmTopicFmt     = "device/%d/alarms"
	dndTopicFmt       = "device/%d/dnd"
	countdownTopicFmt = "device/%d/countdown"
	statusTopic       = "device/+/status"
)

// command is the JSON envelope published to a device topic.
type command struct {
	Op     string                `json:"op"` // install | cancel
	Alarm  *model.AlarmEntry     `json:"alarm,omitempty"`
	Window *model.DNDWindowEntry `json:"window,omitempty"`
	ID     string                `json:"id,omitempty"`
}

// deviceStatus is what agents report on their status topic.
type deviceStatus struct {
	LocationID    int  `json:"location_id"`
	DNDPermission bool `json:"dnd_permission"`
	Booted        bool `json:"booted"`
}

// MQTTBoundary implements Boundary over an MQTT broker. Installs are QoS 1
// so a briefly offline agent still receives them; the countdown is a
// retained message so a reconnecting agent picks up the latest projection
// immediately.
type MQTTBoundary struct {
	client mqtt.Client

	mu            sync.RWMutex
	dndPermission map[int]bool

	// OnBoot is invoked when an agent reports a cold boot; the engine hooks
	// the recovery procedure here.
	OnBoot func(locationID int)
}

func NewMQTTBoundary(brokerURL, clientID string) (*MQTTBoundary, error) {
	b := &MQTTBoundary{dndPermission: map[int]bool{}}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
		if token := client.Subscribe(statusTopic, 1, b.handleStatus); token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Msg("failed to subscribe to device status topic")
		}
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Error().Err(err).Msg("MQTT connection lost")
	}

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return b, nil
}

func (b *MQTTBoundary) handleStatus(_ mqtt.Client, msg mqtt.Message) {
	var status deviceStatus
	if err := json.Unmarshal(msg.Payload(), &status); err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("undecodable device status")
		return
	}

	b.mu.Lock()
	b.dndPermission[status.LocationID] = status.DNDPermission
	b.mu.Unlock()

	if status.Booted && b.OnBoot != nil {
		log.Info().Int("location_id", status.LocationID).Msg("device reported cold boot")
		go b.OnBoot(status.LocationID)
	}
}

// hasDNDPermission defaults to true until an agent says otherwise, so a
// fleet that never reports status keeps DND working.
func (b *MQTTBoundary) hasDNDPermission(locationID int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	granted, reported := b.dndPermission[locationID]
	return !reported || granted
}

func (b *MQTTBoundary) publish(topic string, retained bool, cmd any) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	token := b.client.Publish(topic, 1, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	return nil
}

func (b *MQTTBoundary) InstallAlarm(ctx context.Context, locationID int, alarm model.AlarmEntry) error {
	return b.publish(fmt.Sprintf(alarmTopicFmt, locationID), false, command{Op: "install", Alarm: &alarm})
}

func (b *MQTTBoundary) CancelAlarm(ctx context.Context, locationID int, alarmID string) error {
	return b.publish(fmt.Sprintf(alarmTopicFmt, locationID), false, command{Op: "cancel", ID: alarmID})
}

func (b *MQTTBoundary) InstallDNDWindow(ctx context.Context, locationID int, window model.DNDWindowEntry) error {
	if !b.hasDNDPermission(locationID) {
		return model.ErrPermissionDenied
	}
	return b.publish(fmt.Sprintf(dndTopicFmt, locationID), false, command{Op: "install", Window: &window})
}

func (b *MQTTBoundary) CancelDNDWindow(ctx context.Context, locationID int, windowID string) error {
	return b.publish(fmt.Sprintf(dndTopicFmt, locationID), false, command{Op: "cancel", ID: windowID})
}

func (b *MQTTBoundary) UpdateCountdown(ctx context.Context, payload model.CountdownPayload) error {
	return b.publish(fmt.Sprintf(countdownTopicFmt, payload.LocationID), true, payload)
}

// Disconnect closes the broker connection.
func (b *MQTTBoundary) Disconnect() {
	b.client.Disconnect(250)
	log.Info().Msg("MQTT boundary disconnected")
}

var _ Boundary = (*MQTTBoundary)(nil)
