package quantumpb

import (
	"github.com/pkg/errors"
	"google.golang.org/grpc/encoding"
)

// Message is implemented by every type in this package that travels on the wire.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

type codec struct{}

// Codec returns the grpc codec for this package's messages. It registers
// under the "proto" content subtype, so peers see ordinary protobuf.
func Codec() encoding.Codec { return codec{} }

func (codec) Name() string { return "proto" }

func (codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, errors.Errorf("quantumpb: cannot marshal %T", v)
	}

	return m.Marshal()
}

func (codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return errors.Errorf("quantumpb: cannot unmarshal into %T", v)
	}

	return m.Unmarshal(data)
}
