// Package responseformat encodes run results as JSON or MessagePack. MessagePack output
// uses the json struct tags so both formats carry the same field names.
package responseformat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the output encoding
type Format string

const (
	JSON    Format = "json"
	MsgPack Format = "msgpack"
)

// ParseFormat converts a -format flag value. An empty value means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", JSON:
		return JSON, nil
	case MsgPack:
		return MsgPack, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json or msgpack)", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == MsgPack {
		return "application/x-msgpack"
	}
	return "application/json"
}

// Formatter handles encoding and writing results in JSON or MessagePack format
type Formatter struct {
	format Format
	indent bool
}

// NewFormatter creates a new formatter. Indentation only applies to JSON.
func NewFormatter(format Format, indent bool) *Formatter {
	return &Formatter{format: format, indent: indent}
}

// Write encodes data to w
func (f *Formatter) Write(w io.Writer, data any) error {
	if f.format == MsgPack {
		return f.writeMsgPack(w, data)
	}
	return f.writeJSON(w, data)
}

func (f *Formatter) writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if f.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func (f *Formatter) writeMsgPack(w io.Writer, data any) error {
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}

// MarshalMsgPack encodes v the way the formatter does
func MarshalMsgPack(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewFormatter(MsgPack, false).Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalMsgPack decodes data produced by MarshalMsgPack into v
func UnmarshalMsgPack(data []byte, v any) error {
	decoder := msgpack.NewDecoder(bytes.NewReader(data))
	decoder.SetCustomStructTag("json")
	return decoder.Decode(v)
}
