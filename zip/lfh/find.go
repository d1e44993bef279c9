package lfh

import (
	"fmt"
	"io"
	"iter"
)

// FindLocalFile scans src from the start for the first local file whose name is exactly the given name.
//
// The returned LocalFile owns src and is positioned at the start of its compressed payload; use
// [LocalFile.ExtractUncompressed] to read its content.
//
// The scan reads one local file header at a time and skips over the compressed payload of every non-matching entry.
// The central directory is never read: the first record that is not a local file header (such as a central directory
// file header) ends the scan with an ErrEntryNotFound error, as does running out of bytes for another header. Entries
// with general purpose bit 3 set (sizes stored in a trailing data descriptor) are not supported.
func FindLocalFile(src io.ReadSeeker, name string) (*LocalFile, error) {
	var found *LocalFile
	err := scan(src, func(f *LocalFile) bool {
		if f.FileName() == name {
			found = f
			return true
		}

		return false
	})
	if err != nil {
		return nil, err
	}

	if found == nil {
		return nil, newError(KindEntryNotFound, fmt.Errorf("no local file named %q", name))
	}

	return found, nil
}

// All returns an iterator over the local files in src in on-disk order.
//
// If the loop body does not consume the yielded LocalFile, the iterator skips past its payload and continues. If the
// body consumes it with Skip, ExtractCompressed, or ExtractUncompressed, the stream is no longer the iterator's to
// advance and iteration stops. Reaching the end of the local files is not an error.
func All(src io.ReadSeeker) iter.Seq2[*LocalFile, error] {
	return func(yield func(*LocalFile, error) bool) {
		if err := scan(src, func(f *LocalFile) bool {
			return !yield(f, nil) || f.Consumed()
		}); err != nil {
			yield(nil, err)
		}
	}
}

// Names returns the names of all local files in src in on-disk order.
func Names(src io.ReadSeeker) (names []string, err error) {
	for f, err := range All(src) {
		if err != nil {
			return names, err
		}

		names = append(names, f.FileName())
	}

	return names, nil
}

// scan visits each local file in src in order. visit returns true to stop the scan and keep ownership of the
// LocalFile; otherwise scan skips past it and reads the next header.
//
// Returns nil when visit stops the scan or when there are no more local file headers.
func scan(src io.ReadSeeker, visit func(f *LocalFile) bool) error {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return newError(KindIO, fmt.Errorf("seek to end of stream error: %w", err))
	}

	pos, err := src.Seek(0, io.SeekStart)
	if err != nil {
		return newError(KindIO, fmt.Errorf("seek to start of stream error: %w", err))
	}

	buf := make([]byte, HeaderSize)

	for {
		if size-pos < HeaderSize {
			return nil
		}

		if _, err = io.ReadFull(src, buf); err != nil {
			return newError(KindIO, fmt.Errorf("read local file header (offset=0x%x) error: %w", pos, err))
		}

		// anything that is not a local file header (central directory, EOCD, garbage) ends the scan.
		h, err := ParseLocalFileHeader(buf)
		if err != nil {
			return nil
		}

		f, err := NewLocalFile(src, pos, h)
		if err != nil {
			return err
		}

		if visit(f) {
			return nil
		}

		if pos, src, err = f.Skip(); err != nil {
			return err
		}
	}
}
