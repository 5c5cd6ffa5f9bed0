package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleInt(t *testing.T) {
	tests := []struct {
		raw  string
		want FlexibleInt
	}{
		{`{"expires":604800}`, 604800},
		{`{"expires":"604800"}`, 604800},
		{`{"expires":""}`, 0},
		{`{"expires":null}`, 0},
	}

	for _, tt := range tests {
		var got UpstreamAuth
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &got), tt.raw)
		assert.Equal(t, tt.want, got.Expires, tt.raw)
	}

	var bad UpstreamAuth
	assert.Error(t, json.Unmarshal([]byte(`{"expires":"soon"}`), &bad))
}
