package radiator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/radiator-exporter/openmetrics"
)

func TestSplitResponse(t *testing.T) {
	echo, payload, err := SplitResponse([]byte("STATS .\nAccessRequests:17"))
	require.NoError(t, err)
	assert.Equal(t, "STATS .", echo)
	assert.Equal(t, "AccessRequests:17", payload)
}

func TestSplitResponse_EmptyPayload(t *testing.T) {
	_, payload, err := SplitResponse([]byte("DESCRIBE X.0\n"))
	require.NoError(t, err)
	assert.Equal(t, "", payload)
}

func TestSplitResponse_NoNewline(t *testing.T) {
	_, _, err := SplitResponse([]byte("NOSUCHOBJECT"))
	assert.Error(t, err)
}

func TestSplitResponse_InvalidUTF8(t *testing.T) {
	_, _, err := SplitResponse([]byte("STATS .\nkey:\xff\xfe"))
	assert.Error(t, err)
}

func TestDecodeStats(t *testing.T) {
	stats := DecodeStats("requests:17\x01load:0.25")

	require.Len(t, stats, 2)
	assert.Equal(t, openmetrics.Int(17), stats["requests"])
	assert.Equal(t, openmetrics.Float(0.25), stats["load"])
}

func TestDecodeStats_SkipsAndOverwrites(t *testing.T) {
	stats := DecodeStats("k1:10\x01k2:3.5\x01bad\x01k1:11")

	require.Len(t, stats, 2)
	assert.Equal(t, openmetrics.Int(11), stats["k1"], "later duplicate wins")
	assert.Equal(t, openmetrics.Float(3.5), stats["k2"])
}

func TestDecodeStats_NonNumericSkipped(t *testing.T) {
	stats := DecodeStats("name:radius1\x01count:4")

	require.Len(t, stats, 1)
	assert.Equal(t, openmetrics.Int(4), stats["count"])
}

func TestDecodeStats_IntegerPreferredOverFloat(t *testing.T) {
	stats := DecodeStats("v:7")

	assert.Equal(t, "7", stats["v"].String())
}

func TestDecodeStats_Empty(t *testing.T) {
	assert.Empty(t, DecodeStats(""))
}

func TestExtractIdentifier(t *testing.T) {
	payload := "Name:string:radius-main\x01Identifier:string:site-a\x01Port:integer:1812"

	id, ok := ExtractIdentifier(payload)
	require.True(t, ok)
	assert.Equal(t, "site-a", id)
}

func TestExtractIdentifier_ValueMayContainColons(t *testing.T) {
	id, ok := ExtractIdentifier("Identifier:string:host:1812")
	require.True(t, ok)
	assert.Equal(t, "host:1812", id)
}

func TestExtractIdentifier_WrongType(t *testing.T) {
	_, ok := ExtractIdentifier("Identifier:integer:42")
	assert.False(t, ok)
}

func TestExtractIdentifier_Absent(t *testing.T) {
	_, ok := ExtractIdentifier("Name:string:radius-main")
	assert.False(t, ok)
}
