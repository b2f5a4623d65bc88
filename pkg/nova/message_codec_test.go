package nova

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ideaEvent struct {
	EventID string `json:"eventId"`
	UserID  uint64 `json:"userId"`
	Title   string `json:"title"`
}

func TestCodecs(t *testing.T) {
	for _, codec := range []MessageCodec{JSONCodec, SonicCodec} {
		t.Run(string(codec.Format()), func(t *testing.T) {
			data, err := codec.Encode(ideaEvent{EventID: "e1", UserID: 3, Title: "Idea approved"})
			require.NoError(t, err)
			assert.JSONEq(t, `{"eventId":"e1","userId":3,"title":"Idea approved"}`, string(data))

			var decoded ideaEvent
			require.NoError(t, codec.Decode(data, &decoded))
			assert.Equal(t, uint64(3), decoded.UserID)

			assert.Error(t, codec.Decode([]byte("{not json"), &decoded))
		})
	}
}

func TestCodecsAreInterchangeable(t *testing.T) {
	data, err := SonicCodec.Encode(ideaEvent{EventID: "e2", UserID: 9})
	require.NoError(t, err)

	var decoded ideaEvent
	require.NoError(t, JSONCodec.Decode(data, &decoded))
	assert.Equal(t, "e2", decoded.EventID)
}

func TestNewMessageCodec(t *testing.T) {
	tests := []struct {
		format  MessageFormat
		wantErr bool
	}{
		{MessageFormatJSON, false},
		{MessageFormatSonic, false},
		{"blob", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			codec, err := NewMessageCodec(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, codec.Format())
		})
	}
}
