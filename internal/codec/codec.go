// Package codec wires the frequency list, Huffman tree, bit vector,
// and artifact envelope packages into the two end-to-end pipelines:
// Encode (byte stream -> artifact) and Decode (artifact -> byte
// stream). It is the only package in this module that touches
// temporary files or computes the whole-input content digest.
package codec

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/archivelab/huffman/internal/applog"
	"github.com/archivelab/huffman/internal/artifact"
	"github.com/archivelab/huffman/internal/bitvector"
	"github.com/archivelab/huffman/internal/freqlist"
	"github.com/archivelab/huffman/internal/hufftree"
	"github.com/archivelab/huffman/internal/node"
)

var (
	// ErrEmptyInput is returned by Encode when the source produced zero bytes.
	ErrEmptyInput = errors.New("codec: empty input")
	// ErrUnsupportedMode is returned when the requested or stored mode
	// is neither ModeBit nor ModeText.
	ErrUnsupportedMode = errors.New("codec: unsupported opcode mode")
	// ErrInvalidOpcodeChar is returned in text mode when a body byte is
	// outside the {'0','1'} alphabet.
	ErrInvalidOpcodeChar = errors.New("codec: text-mode opcode byte outside {'0','1'}")
	// ErrModeMismatch is returned by Decode when the caller's requested
	// mode (e.g. the CLI's "-a" flag) disagrees with the mode byte
	// actually stored in the artifact header, rather than silently
	// trusting whichever of the two the header says.
	ErrModeMismatch = errors.New("codec: requested mode does not match artifact header")
)

const chunkSize = 64 * 1024

// buildTree drains list by repeatedly extracting the two
// lowest-frequency nodes, folding them under a freshly built internal
// node, and reinserting that node — the same two-minima merge loop the
// frequency list's ordering exists to support. The node left in list
// once extraction fails becomes the tree's root.
func buildTree(list *freqlist.List) (*hufftree.Tree, error) {
	tree := hufftree.New()

	for {
		x, y, ok := list.GetTwoMin()
		if !ok {
			break
		}
		parent := node.NewInternal(x.Frequency + y.Frequency)
		if err := tree.Connect(parent, x, y); err != nil {
			return nil, err
		}
		list.Insert(parent)
	}

	root := list.Remaining()
	if root == nil {
		return nil, ErrEmptyInput
	}
	tree.AddRoot(root)
	return tree, nil
}

// Encode reads r in full, builds a static Huffman tree over its byte
// frequencies, and writes an artifact to w: the versioned header
// (§6.2), the serialized tree, and the opcode body in the requested
// mode. Because the tree can only be built after every byte's
// frequency is known, the input is buffered once to a temporary file
// on the first pass and replayed from there on the second, rather than
// held entirely in memory.
//
// If print is non-nil, the opcode body — and only the opcode body,
// not the header or serialized tree — is additionally copied to it as
// it is written, supporting the CLI's "-p" flag without requiring a
// second pass over the input.
//
// ctx is checked once per chunk read on both the frequency pass and
// the body-writing pass, so a long-running encode over a large file
// can be interrupted between chunks the same way the rest of this
// pool's request-body-walking handlers are.
func Encode(ctx context.Context, r io.Reader, w io.Writer, mode artifact.Mode, print io.Writer) error {
	if mode != artifact.ModeBit && mode != artifact.ModeText {
		return ErrUnsupportedMode
	}

	tmp, err := os.CreateTemp("", "huffman-encode-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	list := freqlist.New()
	hasher := xxhash.New()
	tee := io.MultiWriter(tmp, hasher)

	var total int64
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			for _, b := range buf[:n] {
				list.AddOrIncrement(b, 0)
			}
			if _, werr := tee.Write(buf[:n]); werr != nil {
				return werr
			}
			total += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	if total == 0 {
		return ErrEmptyInput
	}

	tree, err := buildTree(list)
	if err != nil {
		return err
	}
	table, err := tree.Parse()
	if err != nil {
		return err
	}
	applog.Get().Debugf("huffman: built tree of %d nodes over %d distinct symbols (%d bytes read)",
		tree.Count(), len(table), total)

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, chunkSize)
	header := artifact.Header{Mode: mode, Digest: hasher.Sum64()}
	if err := artifact.WriteHeader(bw, header); err != nil {
		return err
	}
	if err := tree.Serialize(bw); err != nil {
		return err
	}

	bodyDst := io.Writer(bw)
	if print != nil {
		bodyDst = io.MultiWriter(bw, print)
	}

	switch mode {
	case artifact.ModeBit:
		err = encodeBitBody(ctx, bodyDst, tmp, table)
	case artifact.ModeText:
		err = encodeTextBody(ctx, bodyDst, tmp, table)
	}
	if err != nil {
		return err
	}

	return bw.Flush()
}

// encodeBitBody converts every code-table entry into its own bit
// vector, then replays tmp a second time, appending each byte's code
// vector onto a single streaming body vector in Full mode — which
// works out to exactly the code's length because Convert trims a
// vector's capacity down to its cursor. The body is written out with
// its own length-prefixed framing (bitvector.Output).
func encodeBitBody(ctx context.Context, w io.Writer, tmp *os.File, table map[byte]string) error {
	codeVectors := make(map[byte]*bitvector.Vector, len(table))
	for symbol, code := range table {
		v, err := bitvector.Convert(code)
		if err != nil {
			return err
		}
		codeVectors[symbol] = v
	}

	body, err := bitvector.Create(1)
	if err != nil {
		return err
	}

	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := tmp.Read(buf)
		if n > 0 {
			for _, b := range buf[:n] {
				if err := body.AppendVector(codeVectors[b], bitvector.Full); err != nil {
					return err
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}

	return body.Output(w, bitvector.Stream)
}

// encodeTextBody replays tmp, writing each byte's code characters
// straight to w with no framing; the body's length is implied by
// end-of-file on decode.
func encodeTextBody(ctx context.Context, w io.Writer, tmp *os.File, table map[byte]string) error {
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := tmp.Read(buf)
		if n > 0 {
			for _, b := range buf[:n] {
				if _, err := io.WriteString(w, table[b]); err != nil {
					return err
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	return nil
}

// Decode reads an artifact from r — header, tree, opcode body — and
// writes the reconstructed byte stream to w. mode is the caller's
// expectation of the opcode encoding (the CLI's "-a" flag, translated
// to artifact.ModeText or artifact.ModeBit); it is cross-checked
// against the mode byte actually stored in the header rather than
// trusting the header unconditionally, so decoding with the wrong "-a"
// setting fails fast with ErrModeMismatch instead of silently
// misinterpreting the body. The digest recorded in the header is
// checked against a hash of the bytes actually written; a mismatch
// (whether from truncation, bit flips, or a decode that silently
// diverges) surfaces as ErrDigestMismatch rather than succeeding with
// corrupted output.
//
// If print is non-nil, the opcode body read from r — the same bytes
// Encode's print parameter captures on the way in — is additionally
// copied to it as it is consumed, supporting the CLI's "-p" flag on
// decode as well as encode.
func Decode(ctx context.Context, r io.Reader, w io.Writer, mode artifact.Mode, print io.Writer) error {
	if mode != artifact.ModeBit && mode != artifact.ModeText {
		return ErrUnsupportedMode
	}

	br := bufio.NewReaderSize(r, chunkSize)

	header, err := artifact.ReadHeader(br)
	if err != nil {
		return err
	}
	if header.Mode != artifact.ModeBit && header.Mode != artifact.ModeText {
		return ErrUnsupportedMode
	}
	if header.Mode != mode {
		return ErrModeMismatch
	}

	tree, err := hufftree.Deserialize(br)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, chunkSize)
	hasher := xxhash.New()
	out := io.MultiWriter(bw, hasher)

	bodySrc := io.Reader(br)
	if print != nil {
		bodySrc = io.TeeReader(br, print)
	}

	switch header.Mode {
	case artifact.ModeBit:
		err = decodeBitBody(ctx, bodySrc, out, tree)
	case artifact.ModeText:
		err = decodeTextBody(ctx, bodySrc, out, tree)
	}
	if err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return err
	}

	if hasher.Sum64() != header.Digest {
		return artifact.ErrDigestMismatch
	}
	applog.Get().Debugf("huffman: decoded %d-node tree, digest verified", tree.Count())
	return nil
}

// decodeBitBody reads the length-prefixed opcode bit vector and steps
// the tree one bit at a time, emitting a byte whenever a leaf is
// reached.
func decodeBitBody(ctx context.Context, r io.Reader, w io.Writer, tree *hufftree.Tree) error {
	body, err := bitvector.Input(r)
	if err != nil {
		return err
	}

	current := tree.Root
	opcodeCount := body.Size(bitvector.Stream)
	for i := uint64(0); i < opcodeCount; i++ {
		if i%chunkSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		bit, err := body.Check(i)
		if err != nil {
			return err
		}
		opcode := 0
		if bit {
			opcode = 1
		}

		next, emitted, err := tree.StateStep(current, opcode)
		if err != nil {
			return err
		}
		current = next
		if emitted != nil {
			if _, werr := w.Write([]byte{*emitted}); werr != nil {
				return werr
			}
		}
	}

	if current != tree.Root {
		return hufftree.ErrCorruptTree
	}
	return nil
}

// decodeTextBody reads the remainder of r as raw ASCII '0'/'1' opcodes,
// stepping the tree one character at a time until EOF.
func decodeTextBody(ctx context.Context, r io.Reader, w io.Writer, tree *hufftree.Tree) error {
	current := tree.Root
	buf := make([]byte, chunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			for _, c := range buf[:n] {
				var opcode int
				switch c {
				case '0':
					opcode = 0
				case '1':
					opcode = 1
				default:
					return ErrInvalidOpcodeChar
				}

				next, emitted, err := tree.StateStep(current, opcode)
				if err != nil {
					return err
				}
				current = next
				if emitted != nil {
					if _, werr := w.Write([]byte{*emitted}); werr != nil {
						return werr
					}
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}

	if current != tree.Root {
		return hufftree.ErrCorruptTree
	}
	return nil
}
