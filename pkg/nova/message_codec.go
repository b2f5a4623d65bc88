package nova

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// MessageFormat 消息格式
type MessageFormat string

const (
	MessageFormatJSON  MessageFormat = "json"
	MessageFormatSonic MessageFormat = "sonic"
)

// MessageCodec turns event structs into message values. Both formats write
// plain JSON, so a consumer can read what the other format produced.
type MessageCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Format() MessageFormat
}

type funcCodec struct {
	format    MessageFormat
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

func (c funcCodec) Encode(v any) ([]byte, error)    { return c.marshal(v) }
func (c funcCodec) Decode(data []byte, v any) error { return c.unmarshal(data, v) }
func (c funcCodec) Format() MessageFormat           { return c.format }

var (
	JSONCodec  MessageCodec = funcCodec{MessageFormatJSON, json.Marshal, json.Unmarshal}
	SonicCodec MessageCodec = funcCodec{MessageFormatSonic, sonic.Marshal, sonic.Unmarshal}
)

func NewMessageCodec(format MessageFormat) (MessageCodec, error) {
	switch format {
	case MessageFormatJSON:
		return JSONCodec, nil
	case MessageFormatSonic:
		return SonicCodec, nil
	default:
		return nil, fmt.Errorf("unsupported message format: %q", format)
	}
}
