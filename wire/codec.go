package wire

import (
	"context"
	"log/slog"
	"slices"

	"github.com/andreyvit/tval"
)

type Options struct {
	Context   context.Context
	Encoding  Encoding
	MaxDepth  int // decode nesting limit, DefaultMaxDepth if zero
	DebugName string

	Logger  *slog.Logger
	Verbose bool
}

// Codec encodes and decodes values in one Encoding. It is immutable and safe
// for concurrent use.
type Codec struct {
	context   context.Context
	encoding  Encoding
	maxDepth  int
	debugName string
	logger    *slog.Logger
	verbose   bool
}

func NewCodec(o Options) *Codec {
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.DebugName == "" {
		o.DebugName = "tval"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &Codec{
		context:   o.Context,
		encoding:  o.Encoding,
		maxDepth:  o.MaxDepth,
		debugName: o.DebugName,
		logger:    o.Logger,
		verbose:   o.Verbose,
	}
}

func (c *Codec) Encoding() Encoding {
	return c.encoding
}

// Append appends the encoding of tv to buf.
func (c *Codec) Append(buf []byte, tv tval.TypedValue) ([]byte, error) {
	buf, err := c.encoding.AppendValue(buf, tv)
	if err != nil {
		c.logger.LogAttrs(c.context, slog.LevelError, "tval: encode failed", slog.String("codec", c.debugName), slog.String("enc", c.encoding.String()), slog.Any("err", err))
		return buf, err
	}
	if c.verbose {
		c.logger.LogAttrs(c.context, slog.LevelDebug, "tval: encoded", slog.String("codec", c.debugName), slog.Any("value", tv), slog.Int("size", len(buf)))
	}
	return buf, nil
}

// Marshal returns the encoding of tv in a freshly allocated slice.
func (c *Codec) Marshal(tv tval.TypedValue) ([]byte, error) {
	buf := valueBytesPool.Get().([]byte)
	out, err := c.Append(buf, tv)
	if err != nil {
		releaseValueBytes(buf)
		return nil, err
	}
	result := slices.Clone(out)
	releaseValueBytes(out)
	return result, nil
}

// Unmarshal decodes data. Malformed data yields a *DataError, which is also
// logged at warning level. The result does not alias data.
func (c *Codec) Unmarshal(data []byte) (tval.TypedValue, error) {
	tv, err := c.encoding.DecodeValue(data, c.maxDepth)
	if err != nil {
		c.logger.LogAttrs(c.context, slog.LevelWarn, "tval: decode failed", slog.String("codec", c.debugName), slog.String("enc", c.encoding.String()), hexAttr("data", data), slog.Any("err", err))
		return tval.TypedValue{}, err
	}
	if c.verbose {
		c.logger.LogAttrs(c.context, slog.LevelDebug, "tval: decoded", slog.String("codec", c.debugName), slog.Any("value", tv), slog.Int("size", len(data)))
	}
	return tv, nil
}

func (c *Codec) MarshalExpr(e tval.TypedExpr) ([]byte, error) {
	out, err := c.encoding.AppendExpr(nil, e)
	if err != nil {
		c.logger.LogAttrs(c.context, slog.LevelError, "tval: encode failed", slog.String("codec", c.debugName), slog.String("enc", c.encoding.String()), slog.Any("err", err))
		return nil, err
	}
	return out, nil
}

func (c *Codec) UnmarshalExpr(data []byte) (tval.TypedExpr, error) {
	e, err := c.encoding.DecodeExpr(data, c.maxDepth)
	if err != nil {
		c.logger.LogAttrs(c.context, slog.LevelWarn, "tval: decode failed", slog.String("codec", c.debugName), slog.String("enc", c.encoding.String()), hexAttr("data", data), slog.Any("err", err))
		return tval.TypedExpr{}, err
	}
	if c.verbose {
		c.logger.LogAttrs(c.context, slog.LevelDebug, "tval: decoded expr", slog.String("codec", c.debugName), slog.String("expr", e.String()))
	}
	return e, nil
}
