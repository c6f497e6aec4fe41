// Package asset sniffs downloaded asset buffers and routes them to the binary
// container decoder or the XML fallback decoder.
//
// Every decode is isolated: a parser error or panic produces an invalid
// Result for that asset only, so batches of unrelated assets never fail as a
// whole.
package asset

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/goopsie/assetdecode/pkg/container"
	"github.com/goopsie/assetdecode/pkg/model"
	"github.com/goopsie/assetdecode/pkg/xmlmodel"
)

// Format identifies which decoder produced a Result.
type Format uint8

const (
	FormatNone Format = iota
	FormatContainer
	FormatXML
)

func (f Format) String() string {
	switch f {
	case FormatContainer:
		return "Container"
	case FormatXML:
		return "Xml"
	default:
		return "None"
	}
}

// Result is the outcome of decoding one asset.
type Result struct {
	AssetID string
	Root    *model.Forest
	Format  Format
	Valid   bool

	// Size and Digest describe the raw buffer as received, before any
	// envelope was removed. Digest is the hex BLAKE3-256 sum.
	Size   int
	Digest string

	// Err records why the asset is invalid. It is nil for valid results.
	Err error
}

type options struct {
	log     *zap.Logger
	unwrap  bool
	workers int
}

func defaultOptions() options {
	return options{log: zap.NewNop(), unwrap: true}
}

// Option configures Decode and DecodeBatch.
type Option func(*options)

// WithLogger sets the logger. Decoder diagnostics go to Debug, per-asset
// failures to Warn.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithUnwrap toggles removal of gzip and zstd transport envelopes before
// sniffing. It is enabled by default.
func WithUnwrap(enabled bool) Option {
	return func(o *options) {
		o.unwrap = enabled
	}
}

// WithWorkers bounds the number of concurrent decodes in DecodeBatch.
// Values below one select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Digest returns the hex BLAKE3-256 sum of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sniff reports which decoder a buffer would be routed to, without decoding.
func Sniff(data []byte) Format {
	switch {
	case container.HasMagic(data):
		return FormatContainer
	case bytes.Contains(data, []byte(xmlmodel.OpenTag)):
		return FormatXML
	default:
		return FormatNone
	}
}

// Decode decodes one asset buffer. It never panics and never returns a
// partially populated tree: on any failure Root is nil and Valid is false.
func Decode(assetID string, data []byte, opts ...Option) Result {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return decode(assetID, data, o)
}

func decode(assetID string, data []byte, o options) (res Result) {
	res = Result{AssetID: assetID, Size: len(data), Digest: Digest(data)}
	log := o.log.With(zap.String("asset_id", assetID))

	defer func() {
		if r := recover(); r != nil {
			res = invalid(res, fmt.Errorf("decoder panic: %v", r))
			log.Warn("asset decode failed", zap.Error(res.Err))
		}
	}()

	forest, format, err := route(data, o, log)
	if err != nil {
		res = invalid(res, err)
		log.Warn("asset decode failed", zap.Stringer("format", format), zap.Error(err))
		return res
	}

	res.Root = forest
	res.Format = format
	res.Valid = true
	log.Debug("asset decoded", zap.Stringer("format", format), zap.Int("instances", forest.Len()))
	return res
}

func route(data []byte, o options, log *zap.Logger) (*model.Forest, Format, error) {
	if o.unwrap {
		unwrapped, err := Unwrap(data)
		if err != nil {
			return nil, FormatNone, err
		}
		data = unwrapped
	}

	format := Sniff(data)
	decodeFn, ok := decoders[format]
	if !ok {
		return nil, FormatNone, ErrNotModel
	}
	forest, err := decodeFn(data, log)
	if err != nil {
		return nil, format, fmt.Errorf("decode %s: %w", format, err)
	}
	return forest, format, nil
}

type decodeFunc func(data []byte, log *zap.Logger) (*model.Forest, error)

var decoders = map[Format]decodeFunc{
	FormatContainer: func(data []byte, log *zap.Logger) (*model.Forest, error) {
		return container.Decode(data, container.WithLogger(log))
	},
	FormatXML: func(data []byte, log *zap.Logger) (*model.Forest, error) {
		return xmlmodel.Decode(data, xmlmodel.WithLogger(log))
	},
}

func invalid(res Result, err error) Result {
	res.Root = nil
	res.Format = FormatNone
	res.Valid = false
	res.Err = err
	return res
}
