// Package artifact defines the on-disk envelope wrapped around a
// serialized Huffman tree and its opcode body: a magic/version pair,
// the opcode mode the body was written in, and a content digest used
// to detect corruption that stream-length bookkeeping alone would
// miss.
package artifact

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Mode selects how the opcode body following the tree header is encoded.
type Mode uint8

const (
	// ModeBit is the default: a packed bit stream (see internal/bitvector).
	ModeBit Mode = 0
	// ModeText is the ASCII '0'/'1' text form.
	ModeText Mode = 1
)

const (
	magic         = "HUF2"
	version       = 1
	headerSize    = 14 // magic(4) + version(1) + mode(1) + digest(8)
	digestOffset  = 6
	payloadOffset = headerSize
)

var (
	ErrBadMagic           = errors.New("artifact: bad magic")
	ErrUnsupportedVersion = errors.New("artifact: unsupported version")
	ErrBadMode            = errors.New("artifact: unknown opcode mode")
	ErrShortHeader        = errors.New("artifact: truncated header")
	ErrDigestMismatch     = errors.New("artifact: content digest mismatch")
)

// Header is the fixed-size envelope preceding the tree/body payload.
type Header struct {
	Mode   Mode
	Digest uint64
}

// Digest computes the content digest stored in (and verified against) a Header.
func Digest(data []byte) uint64 {
	var h xxhash.Digest
	h.Write(data)
	return h.Sum64()
}

// PayloadOffset is the file offset at which the tree/body payload
// begins — every artifact carries exactly this much fixed header.
const PayloadOffset = payloadOffset

// WriteHeader writes the envelope as the first PayloadOffset bytes of
// w. Artifact I/O proceeds at monotonically increasing offsets
// throughout, so a plain sequential io.Writer is enough.
func WriteHeader(w io.Writer, h Header) error {
	var buf [headerSize]byte
	copy(buf[0:4], magic)
	buf[4] = version
	buf[5] = byte(h.Mode)
	binary.LittleEndian.PutUint64(buf[digestOffset:digestOffset+8], h.Digest)

	_, err := w.Write(buf[:])
	return err
}

// ReadHeader reads and validates the envelope from the start of r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, ErrShortHeader
	}
	if string(buf[0:4]) != magic {
		return Header{}, ErrBadMagic
	}
	if buf[4] != version {
		return Header{}, ErrUnsupportedVersion
	}

	mode := Mode(buf[5])
	if mode != ModeBit && mode != ModeText {
		return Header{}, ErrBadMode
	}

	return Header{
		Mode:   mode,
		Digest: binary.LittleEndian.Uint64(buf[digestOffset : digestOffset+8]),
	}, nil
}
