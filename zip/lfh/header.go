package lfh

import (
	"encoding/binary"
	"fmt"
	"time"
)

// HeaderSize is the size of the fixed part of a local file header.
//
// The file name and extra field follow immediately after.
const HeaderSize = 30

// LocalFileHeader is the fixed-size part of a ZIP local file header.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#Local_file_header.
type LocalFileHeader struct {
	Signature              Signature
	VersionNeededToExtract uint16
	GeneralPurposeBitFlag  uint16
	CompressionMethod      uint16
	LastModFileTime        uint16
	LastModFileDate        uint16
	CRC32                  uint32
	CompressedSize         uint32
	UncompressedSize       uint32
	FileNameLength         uint16
	ExtraFieldLength       uint16
}

// ParseLocalFileHeader decodes the first HeaderSize bytes of b.
//
// Returns an ErrLocalFileHeaderParse error if b is too short, or an ErrInvalidSignature error if b does not start with
// the local file header signature. The latter is how a scan recognises that it has reached the central directory.
func ParseLocalFileHeader(b []byte) (h LocalFileHeader, err error) {
	if len(b) < HeaderSize {
		return h, newError(KindLocalFileHeaderParse, fmt.Errorf("need at least %d bytes, got %d", HeaderSize, len(b)))
	}

	if sig := binary.LittleEndian.Uint32(b[0:4]); sig != uint32(LocalFileHeaderSig) {
		return h, newError(KindInvalidSignature, fmt.Errorf("mismatched signature, got 0x%08x (%s), expected 0x%08x", sig, Classify(sig), uint32(LocalFileHeaderSig)))
	}

	h = LocalFileHeader{
		Signature:              LocalFileHeaderSig,
		VersionNeededToExtract: binary.LittleEndian.Uint16(b[4:6]),
		GeneralPurposeBitFlag:  binary.LittleEndian.Uint16(b[6:8]),
		CompressionMethod:      binary.LittleEndian.Uint16(b[8:10]),
		LastModFileTime:        binary.LittleEndian.Uint16(b[10:12]),
		LastModFileDate:        binary.LittleEndian.Uint16(b[12:14]),
		CRC32:                  binary.LittleEndian.Uint32(b[14:18]),
		CompressedSize:         binary.LittleEndian.Uint32(b[18:22]),
		UncompressedSize:       binary.LittleEndian.Uint32(b[22:26]),
		FileNameLength:         binary.LittleEndian.Uint16(b[26:28]),
		ExtraFieldLength:       binary.LittleEndian.Uint16(b[28:30]),
	}

	return h, nil
}

// Modified returns the last modification time in UTC.
func (h LocalFileHeader) Modified() time.Time {
	return msDosTimeToTime(h.LastModFileDate, h.LastModFileTime)
}

// HasDataDescriptor returns true if bit 3 of the general purpose flag is set.
//
// Such entries record zero sizes in the local file header and cannot be extracted by this package.
func (h LocalFileHeader) HasDataDescriptor() bool {
	return h.GeneralPurposeBitFlag&0x8 != 0
}

// recordSize is the number of bytes from the start of the header to the start of the payload.
func (h LocalFileHeader) recordSize() int64 {
	return HeaderSize + int64(h.FileNameLength) + int64(h.ExtraFieldLength)
}

// msDosTimeToTime converts an MS-DOS date and time into a time.Time.
// The resolution is 2s.
// See: https://learn.microsoft.com/en-us/windows/win32/api/winbase/nf-winbase-dosdatetimetofiletime
//
// taken from https://go.dev/src/archive/zip/struct.go.
func msDosTimeToTime(dosDate, dosTime uint16) time.Time {
	return time.Date(
		// date bits 0-4: day of month; 5-8: month; 9-15: years since 1980
		int(dosDate>>9+1980),
		time.Month(dosDate>>5&0xf),
		int(dosDate&0x1f),

		// time bits 0-4: second/2; 5-10: minute; 11-15: hour
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f*2),
		0, // nanoseconds

		time.UTC,
	)
}
