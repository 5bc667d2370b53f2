package frame

import (
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression applied to a frame payload.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecZstd
	CodecS2
	CodecLZ4
)

var codecNames = [...]string{
	CodecNone: "none",
	CodecZstd: "zstd",
	CodecS2:   "s2",
	CodecLZ4:  "lz4",
}

func (c Codec) String() string {
	if int(c) < len(codecNames) {
		return codecNames[c]
	}
	return fmt.Sprintf("codec(%d)", uint8(c))
}

// ParseCodec resolves a codec name as printed by Codec.String. The empty
// string means CodecNone.
func ParseCodec(name string) (Codec, error) {
	if name == "" {
		return CodecNone, nil
	}
	for c, n := range codecNames {
		if strings.EqualFold(n, name) {
			return Codec(c), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownCodec, name)
}

var (
	zstdEncoders = sync.Pool{
		New: func() any {
			enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression), zstd.WithEncoderCRC(false))
			if err != nil {
				panic(fmt.Sprintf("frame: zstd encoder: %v", err))
			}
			return enc
		},
	}
	zstdDecoders = sync.Pool{
		New: func() any {
			dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
			if err != nil {
				panic(fmt.Sprintf("frame: zstd decoder: %v", err))
			}
			return dec
		},
	}
	lz4Compressors = sync.Pool{
		New: func() any { return &lz4.Compressor{} },
	}
)

func compress(c Codec, raw []byte) ([]byte, error) {
	if int(c) >= len(codecNames) {
		return nil, fmt.Errorf("%w %v", ErrUnknownCodec, c)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	switch c {
	case CodecNone:
		return raw, nil
	case CodecZstd:
		enc := zstdEncoders.Get().(*zstd.Encoder)
		defer zstdEncoders.Put(enc)
		return enc.EncodeAll(raw, nil), nil
	case CodecS2:
		return s2.Encode(nil, raw), nil
	case CodecLZ4:
		lc := lz4Compressors.Get().(*lz4.Compressor)
		defer lz4Compressors.Put(lc)
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lc.CompressBlock(raw, dst)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	default:
		return nil, fmt.Errorf("%w %v", ErrUnknownCodec, c)
	}
}

// decompress expands stored into exactly rawLen bytes.
func decompress(c Codec, stored []byte, rawLen int) ([]byte, error) {
	if rawLen == 0 {
		if len(stored) != 0 {
			return nil, fmt.Errorf("%w: %d stored bytes for an empty payload", ErrLength, len(stored))
		}
		return []byte{}, nil
	}
	var (
		out []byte
		err error
	)
	switch c {
	case CodecNone:
		out = stored
	case CodecZstd:
		dec := zstdDecoders.Get().(*zstd.Decoder)
		defer zstdDecoders.Put(dec)
		out, err = dec.DecodeAll(stored, make([]byte, 0, min(rawLen, 64*len(stored))))
	case CodecS2:
		var n int
		if n, err = s2.DecodedLen(stored); err == nil && n != rawLen {
			return nil, fmt.Errorf("%w: s2 block holds %d bytes, header says %d", ErrLength, n, rawLen)
		}
		if err == nil {
			out, err = s2.Decode(make([]byte, rawLen), stored)
		}
	case CodecLZ4:
		// an lz4 block expands at most 255 times
		if rawLen > 255*len(stored)+16 {
			return nil, fmt.Errorf("%w: %d bytes cannot expand to %d", ErrLength, len(stored), rawLen)
		}
		out = make([]byte, rawLen)
		var n int
		n, err = lz4.UncompressBlock(stored, out)
		out = out[:n]
	default:
		return nil, fmt.Errorf("%w %v", ErrUnknownCodec, c)
	}
	if err != nil {
		return nil, fmt.Errorf("frame: %v payload: %w", c, err)
	}
	if len(out) != rawLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrLength, len(out), rawLen)
	}
	return out, nil
}
