package lfh

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openFirst parses the first local file in data and returns the LocalFile positioned at its payload.
func openFirst(t *testing.T, data []byte) (*bytes.Reader, *LocalFile) {
	t.Helper()

	src := bytes.NewReader(data)
	buf := make([]byte, HeaderSize)
	_, err := io.ReadFull(src, buf)
	require.NoError(t, err)

	h, err := ParseLocalFileHeader(buf)
	require.NoError(t, err)

	f, err := NewLocalFile(src, 0, h)
	require.NoError(t, err)
	return src, f
}

func TestNewLocalFile(t *testing.T) {
	e := deflated("lua/init.lua", "hello world")
	e.extra = []byte{0x55, 0x54, 0x01, 0x00, 0x00}
	data := buildArchive(t, e)

	src, f := openFirst(t, data)
	assert.Equal(t, "lua/init.lua", f.FileName())
	assert.Equal(t, int64(0), f.Offset())
	assert.Equal(t, uint16(5), f.Header().ExtraFieldLength)
	assert.False(t, f.Consumed())

	// cursor must be at the start of the payload.
	cur, err := src.Seek(0, io.SeekCurrent)
	assert.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+len("lua/init.lua")+5), cur)
}

func TestNewLocalFile_InvalidName(t *testing.T) {
	data := buildArchive(t, deflated("bad\xff\xfe.txt", "x"))

	src := bytes.NewReader(data)
	h, err := ParseLocalFileHeader(data)
	require.NoError(t, err)
	_, _ = src.Seek(HeaderSize, io.SeekStart)

	_, err = NewLocalFile(src, 0, h)
	assert.ErrorIs(t, err, ErrNameDecode)
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindNameDecode, kind)
}

func TestNewLocalFile_TruncatedName(t *testing.T) {
	data := buildArchive(t, deflated("a-rather-long-name.txt", "x"))[:HeaderSize+4]

	src := bytes.NewReader(data)
	h, err := ParseLocalFileHeader(data)
	require.NoError(t, err)
	_, _ = src.Seek(HeaderSize, io.SeekStart)

	_, err = NewLocalFile(src, 0, h)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestLocalFile_Skip(t *testing.T) {
	tests := []struct {
		name  string
		entry testEntry
	}{
		{name: "no extra", entry: deflated("a.txt", "hello world")},
		{name: "with extra", entry: testEntry{name: "dir/b.txt", payload: []byte(strings.Repeat("b", 1000)), method: Deflate, level: flate.BestSpeed, extra: make([]byte, 9)}},
		{name: "stored", entry: testEntry{name: "c.bin", payload: []byte{1, 2, 3}, method: Store}},
		{name: "empty", entry: testEntry{name: "empty", method: Deflate, level: flate.BestCompression}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildArchive(t, tt.entry, deflated("next.txt", "next"))

			_, f := openFirst(t, data)
			h := f.Header()

			pos, src, err := f.Skip()
			assert.NoError(t, err)
			assert.NotNil(t, src)
			assert.Equal(t, int64(HeaderSize)+int64(h.FileNameLength)+int64(h.ExtraFieldLength)+int64(h.CompressedSize), pos)

			// the next header must start exactly there.
			buf := make([]byte, HeaderSize)
			_, err = io.ReadFull(src, buf)
			assert.NoError(t, err)
			sig, _ := ParseSignature(buf)
			assert.Equal(t, LocalFileHeaderSig, sig)
		})
	}
}

func TestLocalFile_ExtractCompressed(t *testing.T) {
	e := deflated("lua/init.lua", "hello world")
	e.extra = []byte{1, 2, 3, 4}
	record := buildRecord(t, e)
	data := append(append([]byte{}, record...), buildRecord(t, deflated("other", "other"))...)

	_, f := openFirst(t, data)
	_, got, err := f.ExtractCompressed()
	assert.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestLocalFile_ExtractUncompressed(t *testing.T) {
	payload := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog\n", 64))

	tests := []struct {
		name  string
		entry testEntry
	}{
		{name: "deflate no compression", entry: testEntry{name: "f", payload: payload, method: Deflate, level: flate.NoCompression}},
		{name: "deflate best speed", entry: testEntry{name: "f", payload: payload, method: Deflate, level: flate.BestSpeed}},
		{name: "deflate default", entry: testEntry{name: "f", payload: payload, method: Deflate, level: flate.DefaultCompression}},
		{name: "deflate best compression", entry: testEntry{name: "f", payload: payload, method: Deflate, level: flate.BestCompression}},
		{name: "deflate huffman only", entry: testEntry{name: "f", payload: payload, method: Deflate, level: flate.HuffmanOnly}},
		{name: "deflate empty", entry: testEntry{name: "f", payload: []byte{}, method: Deflate, level: flate.DefaultCompression}},
		{name: "store", entry: testEntry{name: "f", payload: payload, method: Store}},
		{name: "zstd", entry: testEntry{name: "f", payload: payload, method: Zstd}},
		{name: "xz", entry: testEntry{name: "f", payload: payload, method: XZ}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildArchive(t, tt.entry, deflated("next", "next"))

			_, f := openFirst(t, data)
			h := f.Header()
			src, got, err := f.ExtractUncompressed()
			assert.NoError(t, err)
			assert.Equal(t, tt.entry.payload, got)

			// stream is positioned just past the payload.
			cur, err := src.Seek(0, io.SeekCurrent)
			assert.NoError(t, err)
			assert.Equal(t, h.recordSize()+int64(h.CompressedSize), cur)
		})
	}
}

func TestLocalFile_ExtractUncompressed_Errors(t *testing.T) {
	tests := []struct {
		name  string
		entry testEntry
		want  error
	}{
		{
			name:  "declared size larger than actual",
			entry: testEntry{name: "f", payload: []byte("hello world"), method: Deflate, level: flate.DefaultCompression, uncompressedSize: 12},
			want:  ErrDecompress,
		},
		{
			name:  "declared size smaller than actual",
			entry: testEntry{name: "f", payload: []byte("hello world"), method: Deflate, level: flate.DefaultCompression, uncompressedSize: 5},
			want:  ErrDecompress,
		},
		{
			name:  "unsupported method",
			entry: testEntry{name: "f", payload: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, method: 0xffff, uncompressedSize: 6},
			want:  ErrUnsupportedMethod,
		},
		{
			name:  "stored size mismatch",
			entry: testEntry{name: "f", payload: []byte("abc"), method: Store, uncompressedSize: 4},
			want:  ErrDecompress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildArchive(t, tt.entry)

			_, f := openFirst(t, data)
			_, got, err := f.ExtractUncompressed()
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrDecompress)
			assert.Nil(t, got)
		})
	}
}

func TestLocalFile_ExtractUncompressed_Corrupt(t *testing.T) {
	record := buildRecord(t, deflated("f", strings.Repeat("corrupt me ", 50)))

	// 0xff as the first byte is a deflate block with a reserved block type.
	record[HeaderSize+1] = 0xff

	_, f := openFirst(t, record)
	_, _, err := f.ExtractUncompressed()
	assert.ErrorIs(t, err, ErrDecompress)
}

func TestLocalFile_ExtractUncompressed_Truncated(t *testing.T) {
	record := buildRecord(t, deflated("f", strings.Repeat("truncate me ", 50)))

	_, f := openFirst(t, record[:len(record)-3])
	_, _, err := f.ExtractUncompressed()
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestLocalFile_Consumed(t *testing.T) {
	data := buildArchive(t, deflated("a.txt", "a"))

	_, f := openFirst(t, data)
	_, _, err := f.ExtractUncompressed()
	assert.NoError(t, err)
	assert.True(t, f.Consumed())

	_, src, err := f.Skip()
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, ErrConsumed)
	assert.Nil(t, src)

	_, _, err = f.ExtractCompressed()
	assert.ErrorIs(t, err, ErrConsumed)

	_, _, err = f.ExtractUncompressed()
	assert.ErrorIs(t, err, ErrConsumed)
}

func TestRegisterDecompressor(t *testing.T) {
	const reversed uint16 = 0xfffe
	RegisterDecompressor(reversed, func(dst, src []byte) error {
		for i := range src {
			dst[len(dst)-1-i] = src[i]
		}
		return nil
	})

	data := buildArchive(t, testEntry{name: "r", payload: []byte("olleh"), method: reversed})

	_, f := openFirst(t, data)
	_, got, err := f.ExtractUncompressed()
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}
