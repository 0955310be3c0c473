package flowdesc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStripsMillisecondSuffix(t *testing.T) {
	d, err := Parse(map[string]string{
		"Ci": "0.5ms", "Pi": "3", "Ti": "100ms", "Di": "10ms", "BWi": "5",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, d.Ci)
	assert.Equal(t, 3, d.Pi)
	assert.Equal(t, 100.0, d.Ti)
	assert.Equal(t, 10.0, d.Di)
	assert.Equal(t, 5.0, d.BWi)
}

func TestParseAcceptsMbpsAndKbpsSuffixedBandwidth(t *testing.T) {
	d, err := Parse(map[string]string{
		"Ci": "1ms", "Pi": "1", "Ti": "1ms", "Di": "1ms", "BWi": "10Mbps",
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, d.BWi)

	d, err = Parse(map[string]string{
		"Ci": "1ms", "Pi": "1", "Ti": "1ms", "Di": "1ms", "BWi": "500Kbps",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, d.BWi)
}

func TestParseMissingKeyIsError(t *testing.T) {
	_, err := Parse(map[string]string{"Ci": "1ms", "Pi": "1", "Ti": "1ms", "Di": "1ms"})
	assert.Error(t, err)
}

func TestParseUnparsableNumberIsError(t *testing.T) {
	_, err := Parse(map[string]string{"Ci": "abc", "Pi": "1", "Ti": "1ms", "Di": "1ms", "BWi": "1"})
	assert.Error(t, err)
}
