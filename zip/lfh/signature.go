package lfh

import (
	"encoding/binary"
	"fmt"
)

// Signature is the 4-byte little-endian magic number that starts every ZIP record.
type Signature uint32

const (
	// Unknown is any value that is not one of the known record signatures, including zero.
	Unknown Signature = 0
	// LocalFileHeaderSig starts a local file header.
	LocalFileHeaderSig Signature = 0x04034b50
	// CentralFileHeaderSig starts a central directory file header.
	CentralFileHeaderSig Signature = 0x02014b50
	// CentralDirEndSig starts the end-of-central-directory record.
	CentralDirEndSig Signature = 0x06054b50
)

func (s Signature) String() string {
	switch s {
	case LocalFileHeaderSig:
		return "local file header"
	case CentralFileHeaderSig:
		return "central directory file header"
	case CentralDirEndSig:
		return "end of central directory"
	default:
		return "unknown"
	}
}

// Classify maps v to one of the known signatures, or Unknown.
func Classify(v uint32) Signature {
	switch s := Signature(v); s {
	case LocalFileHeaderSig, CentralFileHeaderSig, CentralDirEndSig:
		return s
	default:
		return Unknown
	}
}

// ClassifyBytes reassembles the four bytes as a little-endian uint32 and classifies it.
func ClassifyBytes(b0, b1, b2, b3 byte) Signature {
	return Classify(uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24)
}

// ParseSignature classifies the first 4 bytes of b.
//
// Returns an ErrInvalidSignature error if b is shorter than 4 bytes.
func ParseSignature(b []byte) (Signature, error) {
	if len(b) < 4 {
		return Unknown, newError(KindInvalidSignature, fmt.Errorf("need at least 4 bytes, got %d", len(b)))
	}

	return Classify(binary.LittleEndian.Uint32(b[:4])), nil
}
