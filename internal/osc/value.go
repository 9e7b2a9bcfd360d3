// Package osc implements the OSC 1.0 wire format plus the common 1.1
// extensions: the tagged value union, messages, bundles, the big-endian
// padded binary codec, and address pattern matching.
package osc

/*------------------------------------------------------------------
 *
 * Purpose:	Dynamic OSC value typing, as a tagged union rather than open
 *		polymorphism: decoders branch on the type tag character and
 *		build one of the concrete Value variants below.
 *
 *------------------------------------------------------------------*/

import "fmt"

// Tag is one of the recognized OSC type-tag characters.
type Tag byte

const (
	TagInt32      Tag = 'i'
	TagInt64      Tag = 'h'
	TagFloat32    Tag = 'f'
	TagFloat64    Tag = 'd'
	TagString     Tag = 's'
	TagSymbol     Tag = 'S'
	TagBlob       Tag = 'b'
	TagTimetag    Tag = 't'
	TagChar       Tag = 'c'
	TagColor      Tag = 'r'
	TagMIDI       Tag = 'm'
	TagTrue       Tag = 'T'
	TagFalse      Tag = 'F'
	TagNil        Tag = 'N'
	TagInf        Tag = 'I'
	TagArrayOpen  Tag = '['
	TagArrayClose Tag = ']'
)

// recognizedTags is the exact alphabet decode must reject outside of.
var recognizedTags = map[Tag]bool{
	TagInt32: true, TagInt64: true, TagFloat32: true, TagFloat64: true,
	TagString: true, TagSymbol: true, TagBlob: true, TagTimetag: true,
	TagChar: true, TagColor: true, TagMIDI: true, TagTrue: true,
	TagFalse: true, TagNil: true, TagInf: true,
	TagArrayOpen: true, TagArrayClose: true,
}

// Color is an RGBA color argument, four bytes on the wire.
type Color struct{ R, G, B, A byte }

// MIDI is a four-byte MIDI message argument: port id, status, data1, data2.
type MIDI struct{ Port, Status, Data1, Data2 byte }

// Blob is length-prefixed opaque binary data.
type Blob []byte

// Value is the tagged union over every OSC argument type. Exactly one of
// the exported accessor's dynamic types is populated in Raw; the Tag
// field is what makes the union "tagged": it is set directly from the
// value's own type by construction helpers below, and verified rather
// than inferred when a Value arrives from the wire.
type Value struct {
	Tag Tag
	Raw interface{}
}

func Int32(v int32) Value     { return Value{TagInt32, v} }
func Int64(v int64) Value     { return Value{TagInt64, v} }
func Float32(v float32) Value { return Value{TagFloat32, v} }
func Float64(v float64) Value { return Value{TagFloat64, v} }
func String(v string) Value   { return Value{TagString, v} }
func Symbol(v string) Value   { return Value{TagSymbol, v} }
func BlobValue(v []byte) Value {
	b := make(Blob, len(v))
	copy(b, v)
	return Value{TagBlob, b}
}
func TimetagValue(v Timetag) Value { return Value{TagTimetag, v} }
func Char(v byte) Value            { return Value{TagChar, v} }
func ColorValue(v Color) Value     { return Value{TagColor, v} }
func MIDIValue(v MIDI) Value       { return Value{TagMIDI, v} }
func Bool(v bool) Value {
	if v {
		return Value{TagTrue, true}
	}
	return Value{TagFalse, false}
}
func Nil() Value { return Value{TagNil, nil} }
func Inf() Value { return Value{TagInf, nil} }

// Array holds an ordered sequence of Values; on the wire it is delimited
// by '[' and ']' type tags that themselves contribute no argument data.
func Array(vs ...Value) Value { return Value{TagArrayOpen, vs} }

func (v Value) IsArray() bool { return v.Tag == TagArrayOpen }

func (v Value) String() string {
	return fmt.Sprintf("%c:%v", v.Tag, v.Raw)
}
