package lfh

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression methods with a built-in Decompressor.
//
// See section 4.4.5 of https://pkware.cachefly.net/webdocs/casestudies/APPNOTE.TXT.
const (
	Store   uint16 = 0
	Deflate uint16 = 8
	Zstd    uint16 = 93
	XZ      uint16 = 95
)

// Decompressor decompresses src into dst.
//
// dst has exactly the declared uncompressed size. The Decompressor must return an error if src does not decompress to
// exactly len(dst) bytes.
type Decompressor func(dst, src []byte) error

var decompressors sync.Map // map[uint16]Decompressor

func init() {
	decompressors.Store(Store, Decompressor(store))
	decompressors.Store(Deflate, Decompressor(inflate))
	decompressors.Store(Zstd, Decompressor(unzstd))
	decompressors.Store(XZ, Decompressor(unxz))
}

// RegisterDecompressor registers or overrides the Decompressor for the given compression method.
func RegisterDecompressor(method uint16, d Decompressor) {
	decompressors.Store(method, d)
}

func decompressor(method uint16) Decompressor {
	if v, ok := decompressors.Load(method); ok {
		return v.(Decompressor)
	}

	return nil
}

func store(dst, src []byte) error {
	if len(src) != len(dst) {
		return fmt.Errorf("stored size mismatch: compressed size is %d bytes, uncompressed size is %d bytes", len(src), len(dst))
	}

	copy(dst, src)
	return nil
}

// inflate decompresses raw DEFLATE data (no zlib or gzip envelope).
func inflate(dst, src []byte) error {
	fr := flate.NewReader(bytes.NewReader(src))
	defer fr.Close()

	return readExactly(fr, dst)
}

func unzstd(dst, src []byte) error {
	zr, err := zstd.NewReader(bytes.NewReader(src), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return fmt.Errorf("create zstd decoder error: %w", err)
	}
	defer zr.Close()

	return readExactly(zr, dst)
}

func unxz(dst, src []byte) error {
	xr, err := xz.NewReader(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("create xz reader error: %w", err)
	}

	return readExactly(xr, dst)
}

// readExactly fills dst from r then requires r to be at its end.
func readExactly(r io.Reader, dst []byte) error {
	if n, err := io.ReadFull(r, dst); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("insufficient output: expected %d bytes, got %d", len(dst), n)
		}

		return err
	}

	var one [1]byte
	switch _, err := io.ReadFull(r, one[:]); {
	case err == nil:
		return fmt.Errorf("output exceeds declared size of %d bytes", len(dst))
	case errors.Is(err, io.EOF):
		return nil
	default:
		return err
	}
}
