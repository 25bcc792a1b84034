/*
Package codec provides a minimal protobuf wire format encoder and decoder
used by the persisted models. Fields are written in the order the caller
emits them; zero values are omitted the same way proto3 does.
*/
package codec

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/drip/errors"
)

// Protobuf wire types.
const (
	WireVarint = 0
	WireBytes  = 2
)

// Encoder serializes fields into protobuf wire format. Writes go to an in
// memory proto.Buffer, whose Encode methods always return a nil error.
type Encoder struct {
	buf *proto.Buffer
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{buf: proto.NewBuffer(nil)}
}

func (e *Encoder) key(field, wire int) {
	_ = e.buf.EncodeVarint(uint64(field)<<3 | uint64(wire))
}

// Uint64 writes a varint field. Zero is omitted.
func (e *Encoder) Uint64(field int, v uint64) *Encoder {
	if v == 0 {
		return e
	}
	e.key(field, WireVarint)
	_ = e.buf.EncodeVarint(v)
	return e
}

// Int64 writes a varint field. Zero is omitted.
func (e *Encoder) Int64(field int, v int64) *Encoder {
	return e.Uint64(field, uint64(v))
}

// Bool writes a varint field. False is omitted.
func (e *Encoder) Bool(field int, v bool) *Encoder {
	if !v {
		return e
	}
	return e.Uint64(field, 1)
}

// Bytes writes a length delimited field. Empty values are omitted.
func (e *Encoder) Bytes(field int, v []byte) *Encoder {
	if len(v) == 0 {
		return e
	}
	e.key(field, WireBytes)
	_ = e.buf.EncodeRawBytes(v)
	return e
}

// String writes a length delimited field. Empty values are omitted.
func (e *Encoder) String(field int, v string) *Encoder {
	if v == "" {
		return e
	}
	e.key(field, WireBytes)
	_ = e.buf.EncodeStringBytes(v)
	return e
}

// Message writes a nested message. Empty messages are omitted.
func (e *Encoder) Message(field int, m *Encoder) *Encoder {
	return e.Bytes(field, m.Data())
}

// Data returns the serialized content.
func (e *Encoder) Data() []byte {
	return e.buf.Bytes()
}

// Decoder reads fields from protobuf wire format.
type Decoder struct {
	buf []byte
}

// NewDecoder returns a decoder reading given data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{buf: data}
}

// More returns true if there is data left to decode.
func (d *Decoder) More() bool {
	return len(d.buf) > 0
}

// Next reads the next field header.
func (d *Decoder) Next() (field, wire int, err error) {
	v, err := d.varint()
	if err != nil {
		return 0, 0, err
	}
	field, wire = int(v>>3), int(v&7)
	if field <= 0 {
		return 0, 0, errors.Wrapf(errors.ErrInput, "invalid field number %d", field)
	}
	return field, wire, nil
}

// Uint64 reads a varint value.
func (d *Decoder) Uint64(wire int) (uint64, error) {
	if wire != WireVarint {
		return 0, errors.Wrapf(errors.ErrType, "want varint, got wire type %d", wire)
	}
	return d.varint()
}

// Int64 reads a varint value.
func (d *Decoder) Int64(wire int) (int64, error) {
	v, err := d.Uint64(wire)
	return int64(v), err
}

// Bool reads a varint value.
func (d *Decoder) Bool(wire int) (bool, error) {
	v, err := d.Uint64(wire)
	return v != 0, err
}

// Bytes reads a length delimited value. Returned slice is a copy.
func (d *Decoder) Bytes(wire int) ([]byte, error) {
	if wire != WireBytes {
		return nil, errors.Wrapf(errors.ErrType, "want bytes, got wire type %d", wire)
	}
	size, err := d.varint()
	if err != nil {
		return nil, err
	}
	if size > uint64(len(d.buf)) {
		return nil, errors.Wrap(errors.ErrInput, "truncated bytes field")
	}
	res := make([]byte, size)
	copy(res, d.buf[:size])
	d.buf = d.buf[size:]
	return res, nil
}

// String reads a length delimited value.
func (d *Decoder) String(wire int) (string, error) {
	b, err := d.Bytes(wire)
	return string(b), err
}

// Skip drops the value of an unknown field.
func (d *Decoder) Skip(wire int) error {
	switch wire {
	case WireVarint:
		_, err := d.varint()
		return err
	case WireBytes:
		_, err := d.Bytes(wire)
		return err
	default:
		return errors.Wrapf(errors.ErrType, "unsupported wire type %d", wire)
	}
}

func (d *Decoder) varint() (uint64, error) {
	v, n := proto.DecodeVarint(d.buf)
	if n == 0 {
		return 0, errors.Wrap(errors.ErrInput, "malformed varint")
	}
	d.buf = d.buf[n:]
	return v, nil
}
