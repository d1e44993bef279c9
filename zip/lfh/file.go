package lfh

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"
)

// LocalFile is a local file header bound to its file name and to the stream that contains it.
//
// A LocalFile owns its stream until one of Skip, ExtractCompressed, or ExtractUncompressed hands the stream back to
// the caller. After that, every consuming method returns an ErrIO error wrapping ErrConsumed. LocalFile is not safe for
// use across multiple goroutines.
type LocalFile struct {
	src    io.ReadSeeker
	pos    int64
	header LocalFileHeader
	name   string
}

// NewLocalFile reads the file name and skips past the extra field of the local file whose header was parsed from the
// HeaderSize bytes that started at pos.
//
// src must be positioned immediately after the fixed-size header. Upon success, src is positioned at the start of the
// compressed payload and is owned by the returned LocalFile. The after-header region is consumed exactly once; to
// construct another LocalFile for the same header, seek src back to pos+HeaderSize first.
func NewLocalFile(src io.ReadSeeker, pos int64, h LocalFileHeader) (*LocalFile, error) {
	name := make([]byte, h.FileNameLength)
	if _, err := io.ReadFull(src, name); err != nil {
		return nil, newError(KindIO, fmt.Errorf("read file name (offset=0x%x) error: %w", pos+HeaderSize, err))
	}

	if !utf8.Valid(name) {
		return nil, newError(KindNameDecode, fmt.Errorf("file name (offset=0x%x) is not valid UTF-8: %q", pos+HeaderSize, name))
	}

	if _, err := src.Seek(int64(h.ExtraFieldLength), io.SeekCurrent); err != nil {
		return nil, newError(KindIO, fmt.Errorf("seek past extra field error: %w", err))
	}

	return &LocalFile{
		src:    src,
		pos:    pos,
		header: h,
		name:   string(name),
	}, nil
}

// FileName returns the decoded file name.
func (f *LocalFile) FileName() string {
	return f.name
}

// Header returns a copy of the fixed-size header.
func (f *LocalFile) Header() LocalFileHeader {
	return f.header
}

// Offset returns the offset in the stream where the local file header starts.
func (f *LocalFile) Offset() int64 {
	return f.pos
}

// Consumed returns true if the stream has been handed back to the caller.
func (f *LocalFile) Consumed() bool {
	return f.src == nil
}

func (f *LocalFile) take() (io.ReadSeeker, error) {
	src := f.src
	if src == nil {
		return nil, newError(KindIO, ErrConsumed)
	}

	f.src = nil
	return src, nil
}

// Skip advances the stream past the compressed payload.
//
// Returns the new absolute offset, which is where the next local file header is expected to start, and the stream.
// The stream is returned even if the seek fails.
func (f *LocalFile) Skip() (int64, io.ReadSeeker, error) {
	src, err := f.take()
	if err != nil {
		return 0, nil, err
	}

	pos, err := src.Seek(int64(f.header.CompressedSize), io.SeekCurrent)
	if err != nil {
		return 0, src, newError(KindIO, fmt.Errorf("seek past compressed data of %q error: %w", f.name, err))
	}

	return pos, src, nil
}

// ExtractCompressed returns the raw on-disk record starting at the local file header.
//
// The returned slice spans HeaderSize + compressed size + file name length + extra field length bytes, which is the
// header, the file name, the extra field, and the compressed payload. This is meant for diagnostics.
func (f *LocalFile) ExtractCompressed() (io.ReadSeeker, []byte, error) {
	src, err := f.take()
	if err != nil {
		return nil, nil, err
	}

	if _, err = src.Seek(f.pos, io.SeekStart); err != nil {
		return src, nil, newError(KindIO, fmt.Errorf("seek to local file header of %q error: %w", f.name, err))
	}

	data := make([]byte, f.header.recordSize()+int64(f.header.CompressedSize))
	if _, err = io.ReadFull(src, data); err != nil {
		return src, nil, newError(KindIO, fmt.Errorf("read record of %q error: %w", f.name, err))
	}

	return src, data, nil
}

// ExtractUncompressed reads and decompresses the payload.
//
// The output has exactly the uncompressed size declared in the header; an ErrDecompress error is returned if the
// payload is malformed or decompresses to a different size. Upon return, the stream is positioned just past the
// payload.
func (f *LocalFile) ExtractUncompressed() (io.ReadSeeker, []byte, error) {
	src, err := f.take()
	if err != nil {
		return nil, nil, err
	}

	if _, err = src.Seek(f.pos+f.header.recordSize(), io.SeekStart); err != nil {
		return src, nil, newError(KindIO, fmt.Errorf("seek to compressed data of %q error: %w", f.name, err))
	}

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	n := int64(f.header.CompressedSize)
	if readN, err := bb.ReadFrom(io.LimitReader(src, n)); err != nil {
		return src, nil, newError(KindIO, fmt.Errorf("read compressed data of %q error: %w", f.name, err))
	} else if readN < n {
		return src, nil, newError(KindIO, fmt.Errorf("read compressed data of %q error: %w (expected %d bytes, got %d)", f.name, io.ErrUnexpectedEOF, n, readN))
	}

	method := f.header.CompressionMethod
	d := decompressor(method)
	if d == nil {
		return src, nil, newError(KindDecompress, fmt.Errorf("%w: %d", ErrUnsupportedMethod, method))
	}

	data := make([]byte, f.header.UncompressedSize)
	if err = d(data, bb.B); err != nil {
		return src, nil, newError(KindDecompress, fmt.Errorf("decompress %q (method=%d) error: %w", f.name, method, err))
	}

	return src, data, nil
}
