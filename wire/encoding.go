package wire

import (
	"fmt"

	"github.com/andreyvit/tval"
)

type Encoding int

const (
	Protobuf Encoding = iota
	MsgPack
	JSON

	DefaultEncoding = Protobuf
)

var encodingNames = [...]string{
	Protobuf: "protobuf",
	MsgPack:  "msgpack",
	JSON:     "json",
}

func (enc Encoding) String() string {
	if enc >= 0 && int(enc) < len(encodingNames) {
		return encodingNames[enc]
	}
	return fmt.Sprintf("encoding(%d)", int(enc))
}

// ParseEncoding accepts the names returned by Encoding.String.
func ParseEncoding(s string) (Encoding, error) {
	for i, name := range encodingNames {
		if name == s {
			return Encoding(i), nil
		}
	}
	return 0, fmt.Errorf("unknown encoding %q", s)
}

func (enc Encoding) AppendValue(buf []byte, tv tval.TypedValue) ([]byte, error) {
	switch enc {
	case Protobuf:
		return AppendTypedValue(buf, tv), nil
	case MsgPack:
		return appendMsgpackValue(buf, tv)
	case JSON:
		return appendJSONValue(buf, tv)
	default:
		panic("unsupported encoding")
	}
}

// DecodeValue decodes data, rejecting values nested deeper than maxDepth.
// Malformed data yields a *DataError.
func (enc Encoding) DecodeValue(data []byte, maxDepth int) (tval.TypedValue, error) {
	switch enc {
	case Protobuf:
		d := protoDecoder{orig: data, maxDepth: maxDepth}
		return d.typedValue(data, 0, 0)
	case MsgPack:
		return decodeMsgpackValue(data, maxDepth)
	case JSON:
		return decodeJSONValue(data, maxDepth)
	default:
		panic("unsupported encoding")
	}
}

func (enc Encoding) AppendExpr(buf []byte, e tval.TypedExpr) ([]byte, error) {
	switch enc {
	case Protobuf:
		return AppendTypedExpr(buf, e), nil
	case MsgPack:
		return appendMsgpackExpr(buf, e)
	case JSON:
		return appendJSONExpr(buf, e)
	default:
		panic("unsupported encoding")
	}
}

func (enc Encoding) DecodeExpr(data []byte, maxDepth int) (tval.TypedExpr, error) {
	switch enc {
	case Protobuf:
		d := protoDecoder{orig: data, maxDepth: maxDepth}
		return d.typedExpr(data, 0)
	case MsgPack:
		return decodeMsgpackExpr(data, maxDepth)
	case JSON:
		return decodeJSONExpr(data, maxDepth)
	default:
		panic("unsupported encoding")
	}
}
