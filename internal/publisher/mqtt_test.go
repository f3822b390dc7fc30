package publisher

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jgoulah/callcharts/internal/config"
	"github.com/jgoulah/callcharts/pkg/models"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	connected    bool
	err          error
	messages     []published
	disconnected bool
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.messages = append(c.messages, published{topic, qos, retained, payload.([]byte)})
	return &fakeToken{err: c.err}
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestPublish(t *testing.T) {
	fc := &fakeClient{connected: true}
	p := newWithClient(fc, "", zap.NewNop())

	values, err := models.ParseSeries(`[{"name":"Mon","calls":120}]`)
	require.NoError(t, err)

	entry := models.SavedEntry{
		Email:     "a@b.com",
		ChartID:   models.CallVolume,
		Values:    values,
		UpdatedAt: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(entry))

	require.Len(t, fc.messages, 1)
	msg := fc.messages[0]
	assert.Equal(t, "callcharts/callVolume/"+UserKey("a@b.com")+"/values", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var payload Payload
	require.NoError(t, json.Unmarshal(msg.payload, &payload))
	assert.Equal(t, "a@b.com", payload.Email)
	assert.Equal(t, models.CallVolume, payload.ChartID)
	assert.Equal(t, "2026-10-19T08:00:00Z", payload.UpdatedAt)
	assert.NotEmpty(t, payload.MessageID)
	assert.Equal(t, values, payload.Values)
}

func TestPublish_TokenError(t *testing.T) {
	fc := &fakeClient{connected: true, err: errors.New("not authorized")}
	p := newWithClient(fc, "dash", zap.NewNop())

	err := p.Publish(models.SavedEntry{ChartID: models.VoiceQuality})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dash/voiceQuality/")
	assert.Contains(t, err.Error(), "not authorized")
}

func TestPublish_RetainedTopicPerUser(t *testing.T) {
	fc := &fakeClient{connected: true}
	p := newWithClient(fc, "", zap.NewNop())

	for _, email := range []string{"a@b.com", "c+tag@d.com", " a@b.com "} {
		require.NoError(t, p.Publish(models.SavedEntry{Email: email, ChartID: models.CallVolume}))
	}

	require.Len(t, fc.messages, 3)
	assert.NotEqual(t, fc.messages[0].topic, fc.messages[1].topic)
	assert.Equal(t, fc.messages[0].topic, fc.messages[2].topic)
	assert.NotContains(t, fc.messages[1].topic, "+")
	assert.NotContains(t, fc.messages[1].topic, "@")
}

func TestClose(t *testing.T) {
	fc := &fakeClient{connected: true}
	newWithClient(fc, "", zap.NewNop()).Close()
	assert.True(t, fc.disconnected)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(config.MQTTConfig{}, "", nil)
	assert.Error(t, err)

	_, err = New(config.MQTTConfig{Enabled: true}, "", nil)
	assert.Error(t, err)
}
