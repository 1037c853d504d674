package odrtable

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec compresses the detail blob. The table does not record which codec
// was used, so builder and checker must be configured with the same one.
type Codec interface {
	// Name is the identifier accepted by CodecByName.
	Name() string
	// Compress appends the compressed form of src to dst.
	Compress(dst, src []byte) ([]byte, error)
	// Decompress inflates src into dst and fails unless exactly len(dst)
	// bytes come out.
	Decompress(dst, src []byte) error
}

var (
	// Zlib is the default codec.
	Zlib Codec = zlibCodec{}
	// Zstd trades a bit of build time for smaller blobs.
	Zstd Codec = zstdCodec{}
	// LZ4 uses the LZ4 frame format.
	LZ4 Codec = lz4Codec{}
)

// CodecByName returns the codec registered under name (zlib|zstd|lz4).
// An empty name selects Zlib.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zlib":
		return Zlib, nil
	case "zstd":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected: zlib|zstd|lz4)", ErrUnknownCodec, name)
	}
}

type zlibCodec struct{}

func (zlibCodec) Name() string { return "zlib" }

func (zlibCodec) Compress(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	w := zlib.NewWriter(buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (zlibCodec) Decompress(dst, src []byte) error {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return err
	}
	defer r.Close()
	return readExactly(r, dst)
}

// ZSTD encoder/decoder pools, as creating them is not free
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

type zstdCodec struct{}

func (zstdCodec) Name() string { return "zstd" }

func (zstdCodec) Compress(dst, src []byte) ([]byte, error) {
	enc, ok := zstdEncoderPool.Get().(*zstd.Encoder)
	if !ok {
		var err error
		enc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, err
		}
	}
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(src, dst), nil
}

func (zstdCodec) Decompress(dst, src []byte) error {
	dec, ok := zstdDecoderPool.Get().(*zstd.Decoder)
	if !ok {
		var err error
		dec, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return err
		}
	}
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(src, dst[:0])
	if err != nil {
		return err
	}
	if len(out) != len(dst) {
		return fmt.Errorf("%w: got %d bytes, want %d", errSizeMismatch, len(out), len(dst))
	}
	copy(dst, out)
	return nil
}

type lz4Codec struct{}

func (lz4Codec) Name() string { return "lz4" }

func (lz4Codec) Compress(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	w := lz4.NewWriter(buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decompress(dst, src []byte) error {
	return readExactly(lz4.NewReader(bytes.NewReader(src)), dst)
}

// readExactly fills dst from r and requires r to end right after it.
func readExactly(r io.Reader, dst []byte) error {
	if _, err := io.ReadFull(r, dst); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: fewer than %d bytes", errSizeMismatch, len(dst))
		}
		return err
	}
	n, err := io.CopyN(io.Discard, r, 1)
	if n != 0 {
		return fmt.Errorf("%w: more than %d bytes", errSizeMismatch, len(dst))
	}
	if err != io.EOF {
		return err
	}
	return nil
}
