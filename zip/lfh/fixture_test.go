package lfh

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// testEntry describes a local file to be written by buildArchive.
//
// If compressedSize or uncompressedSize is non-zero, it overrides the value computed from payload so that tests can
// produce headers that lie about their sizes.
type testEntry struct {
	name             string
	payload          []byte
	method           uint16
	level            int
	extra            []byte
	compressedSize   uint32
	uncompressedSize uint32
}

func compressPayload(t testing.TB, method uint16, level int, payload []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	switch method {
	case Store:
		buf.Write(payload)
	case Deflate:
		w, err := flate.NewWriter(&buf, level)
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case Zstd:
		w, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		buf.Write(w.EncodeAll(payload, nil))
		require.NoError(t, w.Close())
	case XZ:
		w, err := xz.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		buf.Write(payload)
	}

	return buf.Bytes()
}

// encodeHeader is the inverse of ParseLocalFileHeader.
func encodeHeader(h LocalFileHeader) []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], uint32(h.Signature))
	binary.LittleEndian.PutUint16(b[4:6], h.VersionNeededToExtract)
	binary.LittleEndian.PutUint16(b[6:8], h.GeneralPurposeBitFlag)
	binary.LittleEndian.PutUint16(b[8:10], h.CompressionMethod)
	binary.LittleEndian.PutUint16(b[10:12], h.LastModFileTime)
	binary.LittleEndian.PutUint16(b[12:14], h.LastModFileDate)
	binary.LittleEndian.PutUint32(b[14:18], h.CRC32)
	binary.LittleEndian.PutUint32(b[18:22], h.CompressedSize)
	binary.LittleEndian.PutUint32(b[22:26], h.UncompressedSize)
	binary.LittleEndian.PutUint16(b[26:28], h.FileNameLength)
	binary.LittleEndian.PutUint16(b[28:30], h.ExtraFieldLength)
	return b
}

func buildRecord(t testing.TB, e testEntry) []byte {
	t.Helper()

	data := compressPayload(t, e.method, e.level, e.payload)
	h := LocalFileHeader{
		Signature:              LocalFileHeaderSig,
		VersionNeededToExtract: 20,
		CompressionMethod:      e.method,
		CompressedSize:         uint32(len(data)),
		UncompressedSize:       uint32(len(e.payload)),
		FileNameLength:         uint16(len(e.name)),
		ExtraFieldLength:       uint16(len(e.extra)),
	}
	if e.compressedSize != 0 {
		h.CompressedSize = e.compressedSize
	}
	if e.uncompressedSize != 0 {
		h.UncompressedSize = e.uncompressedSize
	}

	var buf bytes.Buffer
	buf.Write(encodeHeader(h))
	buf.WriteString(e.name)
	buf.Write(e.extra)
	buf.Write(data)
	return buf.Bytes()
}

func buildArchive(t testing.TB, entries ...testEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	for _, e := range entries {
		buf.Write(buildRecord(t, e))
	}
	return buf.Bytes()
}

func deflated(name, payload string) testEntry {
	return testEntry{name: name, payload: []byte(payload), method: Deflate, level: flate.DefaultCompression}
}
