package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityRefUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{"bare string", `"agent-123"`, "agent-123"},
		{"mongo-style object", `{"_id": "64fa0c"}`, "64fa0c"},
		{"plain id object", `{"id": "agent-123"}`, "agent-123"},
		{"_id wins over id", `{"_id": "a", "id": "b"}`, "a"},
		{"padded string", `"  agent-123  "`, "agent-123"},
		{"empty object", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref EntityRef
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &ref))
			assert.Equal(t, tt.expected, ref.ID)
		})
	}
}

func TestEntityRefMarshal(t *testing.T) {
	out, err := json.Marshal(EntityRef{ID: "bank-7"})
	require.NoError(t, err)
	assert.Equal(t, `"bank-7"`, string(out))
}

func TestEntityRefScan(t *testing.T) {
	var ref EntityRef

	require.NoError(t, ref.Scan("franchise-9"))
	assert.Equal(t, "franchise-9", ref.ID)

	require.NoError(t, ref.Scan([]byte("bank-7")))
	assert.Equal(t, "bank-7", ref.ID)

	require.NoError(t, ref.Scan(nil))
	assert.True(t, ref.IsZero())

	assert.Error(t, ref.Scan(42))
}
