package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/swell-api/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	ts := time.Date(2024, 7, 15, 18, 40, 0, 0, time.UTC)
	obs := domain.Observation{
		Station:           "46266",
		Timestamp:         ts,
		WaveHeightM:       domain.Float(2.0),
		DominantPeriodSec: domain.Float(9.0),
		WindSpeedMS:       domain.Float(5.2),
		WindSource:        "LJAC1",
	}

	msg, err := serializeToMessage(obs)
	require.NoError(t, err)

	assert.Equal(t, []byte("46266"), msg.Key)
	assert.Contains(t, string(msg.Value), `"wave_height_m":2`)
	assert.Contains(t, string(msg.Value), `"wind_source":"LJAC1"`)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "wind_source", msg.Headers[0].Key)
	assert.Equal(t, []byte("LJAC1"), msg.Headers[0].Value)
	assert.Equal(t, "observed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(ts.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_AbsentFieldsAreNull(t *testing.T) {
	obs := domain.Observation{
		Station:    "46259",
		Timestamp:  time.Date(2024, 7, 15, 18, 40, 0, 0, time.UTC),
		WindSource: domain.WindSourceUnavailable,
	}

	msg, err := serializeToMessage(obs)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"wave_height_m":null`)
	assert.Contains(t, string(msg.Value), `"wind_speed_ms":null`)
}
