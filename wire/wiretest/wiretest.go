// Package wiretest has helpers for testing code that encodes typed values.
package wiretest

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/andreyvit/tval"
	"github.com/andreyvit/tval/wire"
)

// Codec returns a verbose codec that logs into t.
func Codec(t testing.TB, enc wire.Encoding) *wire.Codec {
	return wire.NewCodec(wire.Options{
		Encoding:  enc,
		DebugName: t.Name(),
		Logger: slog.New(slog.NewTextHandler(&logWriter{t}, &slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelDebug,
		})),
		Verbose: true,
	})
}

// RoundTrip encodes tv with c, decodes it back, and fails t unless the result
// equals tv. It returns the encoded bytes.
func RoundTrip(t testing.TB, c *wire.Codec, tv tval.TypedValue) []byte {
	t.Helper()
	data, err := c.Marshal(tv)
	if err != nil {
		t.Fatalf("%v: Marshal(%v) failed: %v", c.Encoding(), tv, err)
	}
	actual, err := c.Unmarshal(data)
	if err != nil {
		t.Fatalf("%v: Unmarshal of %v failed: %v\n%s", c.Encoding(), tv, err, HexDump(data, dataErrOff(err)))
	}
	if !actual.Equal(tv) {
		t.Fatalf("%v: round trip got %v, wanted %v\n%s", c.Encoding(), actual, tv, HexDump(data, -1))
	}
	return data
}

// Golden checks the Protobuf encoding of tv against the bytes given in Expand
// notation, and checks that wire.Size agrees.
func Golden(t testing.TB, tv tval.TypedValue, expected ...string) {
	t.Helper()
	data := wire.AppendTypedValue(nil, tv)
	if !BytesEq(t, data, Expand(expected...)) {
		return
	}
	if n := wire.Size(tv); n != len(data) {
		t.Errorf("Size(%v) = %d, wanted %d", tv, n, len(data))
	}
}

func dataErrOff(err error) int {
	if de, ok := err.(*wire.DataError); ok {
		return de.Off
	}
	return -1
}

type logWriter struct{ t testing.TB }

func (c *logWriter) Write(buf []byte) (int, error) {
	msg := string(buf)
	origLen := len(msg)
	msg = strings.TrimSuffix(msg, "\n")
	c.t.Log(msg)
	return origLen, nil
}

// Expand builds bytes from a compact notation. Each whitespace-separated
// element is one of:
//
//	0a_1f     hex bytes (underscores and odd nibbles split bytes)
//	#300      a varint
//	#-1       a varint of a negative int64 (ten bytes)
//	'text     literal text up to the next space
//	08*3      an element repeated 3 times
//	/comment  ignored, as is anything after a slash
func Expand(specs ...string) []byte {
	var b []byte
	for _, spec := range specs {
		for _, elem := range strings.Fields(spec) {
			base, _, _ := strings.Cut(elem, "/")
			if base == "" {
				continue
			}

			base, repStr, _ := strings.Cut(base, "*")
			rep := 1
			if repStr != "" {
				var err error
				rep, err = strconv.Atoi(repStr)
				if err != nil {
					panic(fmt.Sprintf("invalid repeat count %q in element %q", repStr, elem))
				}
			}

			baseBytes, err := appendDecoding(nil, base)
			if err != nil {
				panic(fmt.Errorf("%w in element %q", err, elem))
			}
			for range rep {
				b = append(b, baseBytes...)
			}
		}
	}
	return b
}

func appendDecoding(data []byte, hex string) ([]byte, error) {
	const none byte = 0xFF

	if decimal, ok := strings.CutPrefix(hex, "#"); ok {
		if strings.HasPrefix(decimal, "-") {
			v, err := strconv.ParseInt(decimal, 10, 64)
			if err != nil {
				return nil, err
			}
			return protowire.AppendVarint(data, uint64(v)), nil
		}
		v, err := strconv.ParseUint(decimal, 10, 64)
		if err != nil {
			return nil, err
		}
		return protowire.AppendVarint(data, v), nil
	} else if alpha, ok := strings.CutPrefix(hex, "'"); ok {
		return append(data, alpha...), nil
	}

	prev := none
	for _, b := range []byte(hex) {
		var half byte
		switch b {
		case '_':
			if prev != none {
				data = append(data, prev)
				prev = none
			}
			continue
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			half = b - '0'
		case 'a', 'b', 'c', 'd', 'e', 'f':
			half = b - 'a' + 10
		case 'A', 'B', 'C', 'D', 'E', 'F':
			half = b - 'A' + 10
		default:
			return nil, fmt.Errorf("invalid char '%c'", b)
		}
		if prev == none {
			prev = half
		} else {
			data = append(data, prev<<4|half)
			prev = none
		}
	}
	if prev != none {
		data = append(data, prev)
	}
	return data, nil
}

// HexDump formats b 16 bytes per row, marking the byte at highlightOff
// (pass -1 for none).
func HexDump(b []byte, highlightOff int) string {
	const row = 16
	var buf strings.Builder
	for off := 0; ; off += row {
		fmt.Fprintf(&buf, "%04x", off)
		if off >= len(b) {
			buf.WriteByte('\n')
			break
		}
		for i := range row {
			switch {
			case off+i >= len(b):
				buf.WriteString("   ")
			case off+i == highlightOff:
				fmt.Fprintf(&buf, ">%02x", b[off+i])
			default:
				fmt.Fprintf(&buf, " %02x", b[off+i])
			}
		}
		buf.WriteString("  |")
		for i := range row {
			if off+i < len(b) {
				v := b[off+i]
				if v >= 32 && v <= 126 {
					buf.WriteByte(v)
				} else {
					buf.WriteByte('.')
				}
			}
		}
		buf.WriteString("|\n")
		if off+row >= len(b) {
			break
		}
	}
	return buf.String()
}

// BytesEq reports whether a equals e, failing t with a hex dump of both
// otherwise.
func BytesEq(t testing.TB, a, e []byte) bool {
	if !bytes.Equal(a, e) {
		off := min(len(a), len(e))
		for i := range off {
			if a[i] != e[i] {
				off = i
				break
			}
		}

		t.Helper()
		t.Errorf("** got:\n%v\nwanted:\n%v\nfirst difference offset: 0x%x (%d)", HexDump(a, off), HexDump(e, off), off, off)
		return false
	}
	return true
}
