// Package frame wraps encoded payloads in a small self-describing envelope:
// a magic number, the schema fingerprint of the encoded type, optional
// compression and a CRC32 checksum.
//
//	"PW" | version | flags | codec | schema id (8B LE)
//	| header(raw length) | header(stored length) | stored payload | CRC32 (4B LE)
//
// The checksum covers everything after the magic. Length headers use the
// partwire header encoding.
package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/rawbytedev/partwire/pkg/header"
)

const (
	Magic   = "PW"
	Version = 1

	// FlagPartial marks a payload produced by the partial encoder.
	FlagPartial byte = 1 << 0

	// MaxPayload bounds the declared raw length accepted by Decode.
	MaxPayload = 1 << 30

	fixedLen = len(Magic) + 3 + 8
	crcLen   = 4
)

var (
	ErrBadMagic     = errors.New("frame: bad magic")
	ErrVersion      = errors.New("frame: unsupported version")
	ErrChecksum     = errors.New("frame: checksum mismatch")
	ErrUnknownCodec = errors.New("frame: unknown codec")
	ErrLength       = errors.New("frame: bad length")
)

type Header struct {
	Version  uint8
	Flags    byte
	Codec    Codec
	SchemaID uint64
}

func (h Header) Partial() bool { return h.Flags&FlagPartial != 0 }

// Encode compresses payload with h.Codec and returns the framed bytes.
// A zero h.Version is written as Version.
func Encode(payload []byte, h Header) ([]byte, error) {
	if h.Version == 0 {
		h.Version = Version
	}
	stored, err := compress(h.Codec, payload)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, fixedLen+2*header.Size(uint64(len(payload)))+len(stored)+crcLen)
	out = append(out, Magic...)
	out = append(out, h.Version, h.Flags, byte(h.Codec))
	out = binary.LittleEndian.AppendUint64(out, h.SchemaID)
	if out, err = header.Append(out, uint64(len(payload))); err != nil {
		return nil, err
	}
	if out, err = header.Append(out, uint64(len(stored))); err != nil {
		return nil, err
	}
	out = append(out, stored...)
	return binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(out[len(Magic):])), nil
}

// Decode verifies a frame and returns its header and decompressed payload.
// With CodecNone the payload aliases frame.
func Decode(frame []byte) (Header, []byte, error) {
	h, body, rawLen, err := parse(frame)
	if err != nil {
		return h, nil, err
	}
	payload, err := decompress(h.Codec, body, rawLen)
	return h, payload, err
}

// Peek verifies a frame and returns its header without decompressing.
func Peek(frame []byte) (Header, error) {
	h, _, _, err := parse(frame)
	return h, err
}

func parse(frame []byte) (h Header, stored []byte, rawLen int, err error) {
	if len(frame) < fixedLen+2+crcLen {
		return h, nil, 0, fmt.Errorf("%w: %d bytes", ErrLength, len(frame))
	}
	if !bytes.Equal(frame[:len(Magic)], []byte(Magic)) {
		return h, nil, 0, ErrBadMagic
	}
	end := len(frame) - crcLen
	want := binary.LittleEndian.Uint32(frame[end:])
	if crc32.ChecksumIEEE(frame[len(Magic):end]) != want {
		return h, nil, 0, ErrChecksum
	}

	p := len(Magic)
	h.Version, h.Flags, h.Codec = frame[p], frame[p+1], Codec(frame[p+2])
	h.SchemaID = binary.LittleEndian.Uint64(frame[p+3:])
	if h.Version != Version {
		return h, nil, 0, fmt.Errorf("%w %d", ErrVersion, h.Version)
	}
	if int(h.Codec) >= len(codecNames) {
		return h, nil, 0, fmt.Errorf("%w %d", ErrUnknownCodec, uint8(h.Codec))
	}

	rest := frame[fixedLen:end]
	raw, n, err := header.Decode(rest)
	if err != nil {
		return h, nil, 0, fmt.Errorf("%w: raw length: %w", ErrLength, err)
	}
	rest = rest[n:]
	size, n, err := header.Decode(rest)
	if err != nil {
		return h, nil, 0, fmt.Errorf("%w: stored length: %w", ErrLength, err)
	}
	rest = rest[n:]
	if raw > MaxPayload || size != uint64(len(rest)) {
		return h, nil, 0, fmt.Errorf("%w: raw %d, stored %d, have %d", ErrLength, raw, size, len(rest))
	}
	return h, rest, int(raw), nil
}
