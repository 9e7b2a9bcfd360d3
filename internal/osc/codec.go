package osc

/*------------------------------------------------------------------
 *
 * Purpose:	Encode and decode OSC packets: messages, bundles, and every
 *		argument type, per the OSC 1.0 spec plus the common 1.1
 *		extensions. All multibyte integers are big-endian; strings
 *		and blobs are zero-padded to a 4-byte boundary.
 *
 * Design notes: some OSC implementations skip nested bundles instead of
 *		recursing into them. This decoder recurses, so
 *		Decode(Encode(bundle-of-bundles)) round-trips.
 *
 *---------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/oscmex/engine/internal/oscerr"
)

// MaxMessageSize is the largest packet this codec will decode.
const MaxMessageSize = 16 * 1024 * 1024

// MaxBlobSize is the largest blob argument this codec will decode.
const MaxBlobSize = 32 * 1024 * 1024

func pad4(n int) int { return (n + 3) &^ 3 }

// Encode serializes a Message or Bundle into a self-contained OSC packet.
// The result's length is always a multiple of 4.
func Encode(elem Element) ([]byte, error) {
	var buf []byte
	var err error
	switch e := elem.(type) {
	case Message:
		buf, err = encodeMessage(e)
	case Bundle:
		buf, err = encodeBundle(e)
	default:
		return nil, oscerr.New(oscerr.Malformed, "", fmt.Errorf("osc: unknown element type %T", elem))
	}
	if err != nil {
		return nil, err
	}
	if len(buf) > MaxMessageSize {
		return nil, oscerr.New(oscerr.MessageTooLarge, "", fmt.Errorf("osc: encoded packet %d bytes exceeds max %d", len(buf), MaxMessageSize))
	}
	return buf, nil
}

func encodeString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	buf = append(buf, 0)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

func encodeMessage(m Message) ([]byte, error) {
	buf := encodeString(nil, m.Address)
	buf = encodeString(buf, m.TypeTagString())
	var err error
	buf, err = encodeArgs(buf, m.Args)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func encodeArgs(buf []byte, args []Value) ([]byte, error) {
	for _, v := range args {
		var err error
		buf, err = encodeValue(buf, v)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeValue(buf []byte, v Value) ([]byte, error) {
	switch v.Tag {
	case TagInt32:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(v.Raw.(int32)))
		return append(buf, b[:]...), nil
	case TagInt64, TagTimetag:
		var b [8]byte
		switch r := v.Raw.(type) {
		case int64:
			binary.BigEndian.PutUint64(b[:], uint64(r))
		case Timetag:
			binary.BigEndian.PutUint64(b[:], uint64(r))
		}
		return append(buf, b[:]...), nil
	case TagFloat32:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], math.Float32bits(v.Raw.(float32)))
		return append(buf, b[:]...), nil
	case TagFloat64:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v.Raw.(float64)))
		return append(buf, b[:]...), nil
	case TagString, TagSymbol:
		return encodeString(buf, v.Raw.(string)), nil
	case TagBlob:
		blob := v.Raw.(Blob)
		if len(blob) > MaxBlobSize {
			return nil, oscerr.New(oscerr.MessageTooLarge, "", fmt.Errorf("osc: blob of %d bytes exceeds max %d", len(blob), MaxBlobSize))
		}
		var szb [4]byte
		binary.BigEndian.PutUint32(szb[:], uint32(len(blob)))
		buf = append(buf, szb[:]...)
		buf = append(buf, blob...)
		for len(buf)%4 != 0 {
			buf = append(buf, 0)
		}
		return buf, nil
	case TagChar:
		return append(buf, 0, 0, 0, v.Raw.(byte)), nil
	case TagColor:
		c := v.Raw.(Color)
		return append(buf, c.R, c.G, c.B, c.A), nil
	case TagMIDI:
		m := v.Raw.(MIDI)
		return append(buf, m.Port, m.Status, m.Data1, m.Data2), nil
	case TagTrue, TagFalse, TagNil, TagInf:
		return buf, nil
	case TagArrayOpen:
		return encodeArgs(buf, v.Raw.([]Value))
	default:
		return nil, oscerr.New(oscerr.UnknownType, "", fmt.Errorf("osc: cannot encode tag %q", v.Tag))
	}
}

func encodeBundle(b Bundle) ([]byte, error) {
	buf := append([]byte(nil), BundleHeader...)
	var tt [8]byte
	binary.BigEndian.PutUint64(tt[:], uint64(b.Timetag))
	buf = append(buf, tt[:]...)
	for _, elem := range b.Elements {
		var eb []byte
		var err error
		switch e := elem.(type) {
		case Message:
			eb, err = encodeMessage(e)
		case Bundle:
			eb, err = encodeBundle(e)
		default:
			err = fmt.Errorf("osc: unknown bundle element type %T", elem)
		}
		if err != nil {
			return nil, err
		}
		var szb [4]byte
		binary.BigEndian.PutUint32(szb[:], uint32(len(eb)))
		buf = append(buf, szb[:]...)
		buf = append(buf, eb...)
	}
	return buf, nil
}

// Decode parses a self-contained OSC packet into a Message or a Bundle.
func Decode(buf []byte) (Element, error) {
	if len(buf) > MaxMessageSize {
		return nil, oscerr.New(oscerr.MessageTooLarge, "", fmt.Errorf("osc: packet of %d bytes exceeds max %d", len(buf), MaxMessageSize))
	}
	if len(buf) >= 8 && string(buf[:8]) == BundleHeader {
		return decodeBundle(buf)
	}
	return decodeMessage(buf)
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) readString() (string, error) {
	start := r.pos
	for r.pos < len(r.buf) && r.buf[r.pos] != 0 {
		r.pos++
	}
	if r.pos >= len(r.buf) {
		return "", fmt.Errorf("osc: unterminated string")
	}
	s := string(r.buf[start:r.pos])
	// consume the null and padding to the next 4-byte boundary.
	r.pos = pad4(r.pos + 1)
	if r.pos > len(r.buf) {
		return "", fmt.Errorf("osc: truncated string padding")
	}
	return s, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("osc: truncated argument data")
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func decodeMessage(buf []byte) (Message, error) {
	r := &reader{buf: buf}
	addr, err := r.readString()
	if err != nil {
		return Message{}, oscerr.New(oscerr.Malformed, "", fmt.Errorf("osc: reading address: %w", err))
	}
	if addr == "" || addr[0] != '/' {
		return Message{}, oscerr.New(oscerr.Malformed, addr, fmt.Errorf("osc: address must start with '/'"))
	}
	tags, err := r.readString()
	if err != nil {
		return Message{}, oscerr.New(oscerr.Malformed, addr, fmt.Errorf("osc: reading type tags: %w", err))
	}
	if len(tags) == 0 || tags[0] != ',' {
		return Message{}, oscerr.New(oscerr.Malformed, addr, fmt.Errorf("osc: type tag string must begin with ','"))
	}
	args, _, err := decodeArgs(r, []byte(tags[1:]), 0)
	if err != nil {
		return Message{}, oscerr.New(oscerr.Malformed, addr, err)
	}
	return Message{Address: addr, Args: args}, nil
}

// decodeArgs consumes tag characters starting at index i, stopping at the
// first ']' it meets at its own level (at any call depth), and returns the
// decoded values plus the index just past what it consumed.
func decodeArgs(r *reader, tags []byte, i int) ([]Value, int, error) {
	var out []Value
	for i < len(tags) {
		tag := Tag(tags[i])
		if tag == TagArrayClose {
			return out, i + 1, nil
		}
		if !recognizedTags[tag] {
			return nil, 0, fmt.Errorf("osc: unrecognized type tag %q", tag)
		}
		if tag == TagArrayOpen {
			elems, next, err := decodeArgs(r, tags, i+1)
			if err != nil {
				return nil, 0, err
			}
			if next == 0 || next > len(tags) || tags[next-1] != byte(TagArrayClose) {
				return nil, 0, fmt.Errorf("osc: unclosed array in type tag string")
			}
			out = append(out, Array(elems...))
			i = next
			continue
		}
		v, err := decodeValue(r, tag)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
		i++
	}
	return out, i, nil
}

func decodeValue(r *reader, tag Tag) (Value, error) {
	switch tag {
	case TagInt32:
		b, err := r.readBytes(4)
		if err != nil {
			return Value{}, err
		}
		return Int32(int32(binary.BigEndian.Uint32(b))), nil
	case TagInt64:
		b, err := r.readBytes(8)
		if err != nil {
			return Value{}, err
		}
		return Int64(int64(binary.BigEndian.Uint64(b))), nil
	case TagTimetag:
		b, err := r.readBytes(8)
		if err != nil {
			return Value{}, err
		}
		return TimetagValue(Timetag(binary.BigEndian.Uint64(b))), nil
	case TagFloat32:
		b, err := r.readBytes(4)
		if err != nil {
			return Value{}, err
		}
		return Float32(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case TagFloat64:
		b, err := r.readBytes(8)
		if err != nil {
			return Value{}, err
		}
		return Float64(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case TagString:
		s, err := r.readString()
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case TagSymbol:
		s, err := r.readString()
		if err != nil {
			return Value{}, err
		}
		return Symbol(s), nil
	case TagBlob:
		szb, err := r.readBytes(4)
		if err != nil {
			return Value{}, err
		}
		size := int32(binary.BigEndian.Uint32(szb))
		if size < 0 || size > MaxBlobSize {
			return Value{}, fmt.Errorf("osc: blob size %d out of range", size)
		}
		if int(size) > r.remaining() {
			return Value{}, fmt.Errorf("osc: blob size %d exceeds remaining buffer", size)
		}
		data, err := r.readBytes(int(size))
		if err != nil {
			return Value{}, err
		}
		padded := pad4(int(size))
		if padded > int(size) {
			if _, err := r.readBytes(padded - int(size)); err != nil {
				return Value{}, err
			}
		}
		return BlobValue(data), nil
	case TagChar:
		b, err := r.readBytes(4)
		if err != nil {
			return Value{}, err
		}
		return Char(b[3]), nil
	case TagColor:
		b, err := r.readBytes(4)
		if err != nil {
			return Value{}, err
		}
		return ColorValue(Color{b[0], b[1], b[2], b[3]}), nil
	case TagMIDI:
		b, err := r.readBytes(4)
		if err != nil {
			return Value{}, err
		}
		return MIDIValue(MIDI{b[0], b[1], b[2], b[3]}), nil
	case TagTrue:
		return Value{TagTrue, true}, nil
	case TagFalse:
		return Value{TagFalse, false}, nil
	case TagNil:
		return Value{TagNil, nil}, nil
	case TagInf:
		return Value{TagInf, nil}, nil
	default:
		return Value{}, fmt.Errorf("osc: cannot decode tag %q", tag)
	}
}

func decodeBundle(buf []byte) (Bundle, error) {
	r := &reader{buf: buf, pos: 8}
	ttb, err := r.readBytes(8)
	if err != nil {
		return Bundle{}, oscerr.New(oscerr.Malformed, "", fmt.Errorf("osc: reading bundle timetag: %w", err))
	}
	b := Bundle{Timetag: Timetag(binary.BigEndian.Uint64(ttb))}
	for r.remaining() > 0 {
		szb, err := r.readBytes(4)
		if err != nil {
			return Bundle{}, oscerr.New(oscerr.Malformed, "", fmt.Errorf("osc: reading element size: %w", err))
		}
		size := int32(binary.BigEndian.Uint32(szb))
		if size < 0 || int(size) > r.remaining() {
			return Bundle{}, oscerr.New(oscerr.Malformed, "", fmt.Errorf("osc: element size %d exceeds remaining buffer", size))
		}
		elemBuf, err := r.readBytes(int(size))
		if err != nil {
			return Bundle{}, oscerr.New(oscerr.Malformed, "", err)
		}
		elem, err := Decode(elemBuf)
		if err != nil {
			return Bundle{}, err
		}
		b.Elements = append(b.Elements, elem)
	}
	return b, nil
}
