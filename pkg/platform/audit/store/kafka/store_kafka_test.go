package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "landregistry/pkg/platform/audit"
)

func TestEncodeDecode(t *testing.T) {
	event := audit.Event{
		ID:        "evt-1",
		Category:  audit.CategoryCompliance,
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Height:    42,
		Principal: "registrar-1",
		Subject:   "property:1",
		Action:    string(audit.EventPropertyAudited),
		Decision:  "granted",
	}

	value, err := jsonValue(event)
	require.NoError(t, err)

	decoded, err := Decode(value)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestNew_NoBrokers(t *testing.T) {
	_, err := New(nil, "registry.audit")
	assert.Error(t, err)
}
