package responseformat

import (
	"bytes"
	"encoding/json"
	"testing"
)

type sample struct {
	Depth float64   `json:"depth"`
	Phase string    `json:"phase"`
	Loads []float64 `json:"loads,omitempty"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", JSON, false},
		{"json", JSON, false},
		{"msgpack", MsgPack, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if MsgPack.ContentType() != "application/x-msgpack" || JSON.ContentType() != "application/json" {
		t.Error("unexpected content types")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(JSON, false).Write(&buf, sample{Depth: 21, Phase: "deco-stop"}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "{\"depth\":21,\"phase\":\"deco-stop\"}\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMsgPackUsesJSONTags(t *testing.T) {
	in := sample{Depth: 6, Phase: "ascending", Loads: []float64{0.75, 1.2}}

	data, err := MarshalMsgPack(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("phase")) || bytes.Contains(data, []byte("Phase")) {
		t.Errorf("msgpack keys should follow json tags: %x", data)
	}

	var out sample
	if err := UnmarshalMsgPack(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Depth != in.Depth || out.Phase != in.Phase || len(out.Loads) != 2 || out.Loads[1] != 1.2 {
		t.Errorf("round trip mismatch: %+v", out)
	}

	// the two encodings carry the same document
	var viaJSON map[string]any
	var buf bytes.Buffer
	if err := NewFormatter(JSON, true).Write(&buf, in); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(buf.Bytes(), &viaJSON); err != nil {
		t.Fatal(err)
	}
	if len(viaJSON) != 3 {
		t.Errorf("expected 3 keys, got %v", viaJSON)
	}
}
