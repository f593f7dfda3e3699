// Package quantumpb holds the messages and gRPC bindings of the
// quantum.QuantumService protocol described in quantum.proto.
package quantumpb

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	programField protowire.Number = 1
	shotsField   protowire.Number = 2
	paramsField  protowire.Number = 3

	mapKeyField   protowire.Number = 1
	mapValueField protowire.Number = 2

	roField protowire.Number = 1
)

// RunQuilRequest submits one program for execution.
type RunQuilRequest struct {
	Program string
	Shots   int32
	Params  map[string]float64
}

func (m *RunQuilRequest) GetProgram() string {
	if m == nil {
		return ""
	}
	return m.Program
}

func (m *RunQuilRequest) GetShots() int32 {
	if m == nil {
		return 0
	}
	return m.Shots
}

func (m *RunQuilRequest) GetParams() map[string]float64 {
	if m == nil {
		return nil
	}
	return m.Params
}

// Marshal encodes the request in protobuf wire format. Map entries are
// written in key order so equal requests encode identically.
func (m *RunQuilRequest) Marshal() ([]byte, error) {
	var b []byte

	if m.Program != "" {
		b = protowire.AppendTag(b, programField, protowire.BytesType)
		b = protowire.AppendString(b, m.Program)
	}

	if m.Shots != 0 {
		b = protowire.AppendTag(b, shotsField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(m.Shots)))
	}

	keys := make([]string, 0, len(m.Params))
	for k := range m.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var entry []byte
		entry = protowire.AppendTag(entry, mapKeyField, protowire.BytesType)
		entry = protowire.AppendString(entry, k)
		entry = protowire.AppendTag(entry, mapValueField, protowire.Fixed64Type)
		entry = protowire.AppendFixed64(entry, math.Float64bits(m.Params[k]))

		b = protowire.AppendTag(b, paramsField, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}

	return b, nil
}

// Unmarshal decodes protobuf wire bytes, skipping unknown fields.
func (m *RunQuilRequest) Unmarshal(b []byte) error {
	*m = RunQuilRequest{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "request tag")
		}
		b = b[n:]

		switch {
		case num == programField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "request program")
			}
			m.Program = v
			b = b[n:]
		case num == shotsField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "request shots")
			}
			m.Shots = int32(v)
			b = b[n:]
		case num == paramsField && typ == protowire.BytesType:
			entry, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "request params")
			}
			k, v, err := unmarshalParam(entry)
			if err != nil {
				return err
			}
			if m.Params == nil {
				m.Params = make(map[string]float64)
			}
			m.Params[k] = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "request unknown field")
			}
			b = b[n:]
		}
	}

	return nil
}

func unmarshalParam(b []byte) (string, float64, error) {
	var (
		key   string
		value float64
	)

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", 0, errors.Wrap(protowire.ParseError(n), "param tag")
		}
		b = b[n:]

		switch {
		case num == mapKeyField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return "", 0, errors.Wrap(protowire.ParseError(n), "param key")
			}
			key = v
			b = b[n:]
		case num == mapValueField && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return "", 0, errors.Wrap(protowire.ParseError(n), "param value")
			}
			value = math.Float64frombits(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return "", 0, errors.Wrap(protowire.ParseError(n), "param unknown field")
			}
			b = b[n:]
		}
	}

	return key, value, nil
}

// QuilResult is one chunk of the streamed readout, one value per shot.
type QuilResult struct {
	Ro []int32
}

func (m *QuilResult) GetRo() []int32 {
	if m == nil {
		return nil
	}
	return m.Ro
}

// Marshal encodes the chunk with ro as a packed repeated field.
func (m *QuilResult) Marshal() ([]byte, error) {
	if len(m.Ro) == 0 {
		return nil, nil
	}

	var packed []byte
	for _, v := range m.Ro {
		packed = protowire.AppendVarint(packed, uint64(int64(v)))
	}

	b := protowire.AppendTag(nil, roField, protowire.BytesType)
	return protowire.AppendBytes(b, packed), nil
}

// Unmarshal accepts both packed and unpacked encodings of ro.
func (m *QuilResult) Unmarshal(b []byte) error {
	*m = QuilResult{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "result tag")
		}
		b = b[n:]

		switch {
		case num == roField && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "result ro")
			}
			for len(packed) > 0 {
				v, k := protowire.ConsumeVarint(packed)
				if k < 0 {
					return errors.Wrap(protowire.ParseError(k), "result ro value")
				}
				m.Ro = append(m.Ro, int32(v))
				packed = packed[k:]
			}
			b = b[n:]
		case num == roField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "result ro value")
			}
			m.Ro = append(m.Ro, int32(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "result unknown field")
			}
			b = b[n:]
		}
	}

	return nil
}
