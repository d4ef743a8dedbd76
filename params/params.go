// Package params reads and writes LoRaWAN region parameters.
//
// Parameters are exchanged as JSON and persisted as a gzip-compressed
// protobuf blockchain_region_params_v1 message. The message is small and
// flat, so it is encoded field by field with protowire instead of generated
// bindings.
package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is returned for protobuf input that does not decode.
var ErrMalformed = errors.New("malformed region params")

// Spreading is a LoRa spreading factor.
type Spreading int32

const (
	SFInvalid Spreading = iota
	SF7
	SF8
	SF9
	SF10
	SF11
	SF12
)

var spreadingNames = [...]string{"SF_INVALID", "SF7", "SF8", "SF9", "SF10", "SF11", "SF12"}

func (s Spreading) String() string {
	if s >= 0 && int(s) < len(spreadingNames) {
		return spreadingNames[s]
	}
	return fmt.Sprintf("Spreading(%d)", int32(s))
}

// UnmarshalJSON accepts the numeric value or the name, e.g. 1 or "SF7".
func (s *Spreading) UnmarshalJSON(data []byte) error {
	var name string
	if err := gojson.Unmarshal(data, &name); err == nil {
		for i, n := range spreadingNames {
			if strings.EqualFold(n, name) {
				*s = Spreading(i)
				return nil
			}
		}
		return fmt.Errorf("unknown spreading factor %q", name)
	}
	var n int32
	if err := gojson.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = Spreading(n)
	return nil
}

// TaggedSpreading bounds the packet size for one spreading factor.
type TaggedSpreading struct {
	RegionSpreading Spreading `json:"region_spreading"`
	MaxPacketSize   uint32    `json:"max_packet_size"`
}

// RegionSpreading lists the spreading factors usable on a channel.
type RegionSpreading struct {
	TaggedSpreading []TaggedSpreading `json:"tagged_spreading"`
}

// RegionParam describes one channel.
type RegionParam struct {
	ChannelFrequency uint64           `json:"channel_frequency"`
	Bandwidth        uint64           `json:"bandwidth"`
	MaxEIRP          uint32           `json:"max_eirp"`
	Spreading        *RegionSpreading `json:"spreading"`
}

// RegionParams is the parameter set of a region.
type RegionParams struct {
	RegionParams []RegionParam `json:"region_params"`
}

// MarshalBinary encodes p as a blockchain_region_params_v1 message.
func (p *RegionParams) MarshalBinary() ([]byte, error) {
	var b []byte
	for _, rp := range p.RegionParams {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, rp.marshal())
	}
	return b, nil
}

func (rp *RegionParam) marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, rp.ChannelFrequency)
	b = appendVarint(b, 2, rp.Bandwidth)
	b = appendVarint(b, 3, uint64(rp.MaxEIRP))
	if rp.Spreading != nil {
		var sb []byte
		for _, ts := range rp.Spreading.TaggedSpreading {
			var tb []byte
			tb = appendVarint(tb, 1, uint64(int64(ts.RegionSpreading)))
			tb = appendVarint(tb, 2, uint64(ts.MaxPacketSize))
			sb = protowire.AppendTag(sb, 1, protowire.BytesType)
			sb = protowire.AppendBytes(sb, tb)
		}
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, sb)
	}
	return b
}

// appendVarint appends a varint field, leaving out zero values like proto3.
func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// UnmarshalBinary decodes a blockchain_region_params_v1 message. Unknown
// fields are skipped.
func (p *RegionParams) UnmarshalBinary(data []byte) error {
	*p = RegionParams{}
	return walk(data, func(num protowire.Number, v uint64, msg []byte) error {
		if num != 1 || msg == nil {
			return nil
		}
		var rp RegionParam
		if err := rp.unmarshal(msg); err != nil {
			return err
		}
		p.RegionParams = append(p.RegionParams, rp)
		return nil
	})
}

func (rp *RegionParam) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, v uint64, msg []byte) error {
		switch num {
		case 1:
			rp.ChannelFrequency = v
		case 2:
			rp.Bandwidth = v
		case 3:
			rp.MaxEIRP = uint32(v)
		case 4:
			if msg == nil {
				return nil
			}
			rp.Spreading = &RegionSpreading{TaggedSpreading: []TaggedSpreading{}}
			return walk(msg, func(num protowire.Number, _ uint64, tmsg []byte) error {
				if num != 1 || tmsg == nil {
					return nil
				}
				var ts TaggedSpreading
				err := walk(tmsg, func(num protowire.Number, v uint64, _ []byte) error {
					switch num {
					case 1:
						ts.RegionSpreading = Spreading(int32(v))
					case 2:
						ts.MaxPacketSize = uint32(v)
					}
					return nil
				})
				rp.Spreading.TaggedSpreading = append(rp.Spreading.TaggedSpreading, ts)
				return err
			})
		}
		return nil
	})
}

// walk calls fn for every field of a message. Varint fields carry their
// value in v, length-delimited fields their payload in msg.
func walk(data []byte, fn func(num protowire.Number, v uint64, msg []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		var (
			v   uint64
			msg []byte
		)
		switch typ {
		case protowire.VarintType:
			v, n = protowire.ConsumeVarint(data)
		case protowire.BytesType:
			msg, n = protowire.ConsumeBytes(data)
			if msg == nil && n >= 0 {
				msg = []byte{}
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		data = data[n:]

		if err := fn(num, v, msg); err != nil {
			return err
		}
	}
	return nil
}

// ReadJSON decodes region params from JSON.
func ReadJSON(r io.Reader) (*RegionParams, error) {
	var p RegionParams
	if err := gojson.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("params json: %w", err)
	}
	return &p, nil
}

// WriteJSON writes p as indented JSON.
func WriteJSON(w io.Writer, p *RegionParams) error {
	data, err := gojson.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Write writes p as a gzip-compressed protobuf message.
func Write(w io.Writer, p *RegionParams) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(w)
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// Read reads a gzip-compressed protobuf message written by Write.
func Read(r io.Reader) (*RegionParams, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	var p RegionParams
	if err := p.UnmarshalBinary(buf.Bytes()); err != nil {
		return nil, err
	}
	return &p, nil
}
