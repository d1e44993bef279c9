// Package load reads a single entry out of a ZIP archive using one of several strategies so that their memory usage
// can be compared.
package load

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/klauspost/compress/zip"
	"github.com/mholt/archives"
	"github.com/nguyengg/zipentry/internal"
	"github.com/nguyengg/zipentry/zip/lfh"
)

// Strategy decides how an entry is loaded.
type Strategy string

const (
	// File reads the entry directly from the filesystem; the archive is not used.
	File Strategy = "file"
	// Zip opens the archive with a full ZIP reader that parses the central directory.
	Zip Strategy = "zip"
	// Parser scans the local file headers with lfh.FindLocalFile.
	Parser Strategy = "parser"
	// Archives walks the central directory with the format-agnostic extractor from github.com/mholt/archives.
	Archives Strategy = "archives"
)

// Strategies lists all valid Strategy values.
var Strategies = []Strategy{File, Zip, Parser, Archives}

// ParseStrategy returns the Strategy with the given name.
func ParseStrategy(s string) (Strategy, error) {
	for _, v := range Strategies {
		if string(v) == s {
			return v, nil
		}
	}

	return "", fmt.Errorf("unknown strategy %q, must be one of: file, zip, parser, archives", s)
}

// Result is the outcome of a successful Load.
type Result struct {
	// Data is the uncompressed content of the entry.
	Data []byte
	// Before is sampled right before the archive is opened.
	Before internal.HeapSample
	// After is sampled right after the entry has been read.
	After internal.HeapSample
}

// Load reads the named entry from the archive using the given strategy.
//
// With strategy File, the entry is a path on the local filesystem and archive is ignored.
func Load(ctx context.Context, strategy Strategy, archive, entry string, optFns ...func(*Options)) (res *Result, err error) {
	res = &Result{Before: internal.SampleHeap()}

	switch strategy {
	case File:
		res.Data, err = os.ReadFile(entry)
	case Zip:
		res.Data, err = withArchive(ctx, archive, optFns, func(a *Archive) ([]byte, error) {
			return loadZip(a, entry)
		})
	case Parser:
		res.Data, err = withArchive(ctx, archive, optFns, func(a *Archive) ([]byte, error) {
			return loadParser(a, entry)
		})
	case Archives:
		res.Data, err = withArchive(ctx, archive, optFns, func(a *Archive) ([]byte, error) {
			return loadArchives(ctx, a, entry)
		})
	default:
		err = fmt.Errorf("unknown strategy %q", strategy)
	}
	if err != nil {
		return nil, err
	}

	res.After = internal.SampleHeap()
	return res, nil
}

func withArchive(ctx context.Context, name string, optFns []func(*Options), fn func(*Archive) ([]byte, error)) (data []byte, err error) {
	a, err := Open(ctx, name, optFns...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close archive error: %w", cerr)
		}
	}()

	return fn(a)
}

func loadZip(a *Archive, entry string) ([]byte, error) {
	zr, err := zip.NewReader(a.File(), a.Size)
	if err != nil {
		return nil, fmt.Errorf("open zip reader error: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != entry {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry error: %w", err)
		}
		defer rc.Close()

		return io.ReadAll(rc)
	}

	return nil, fmt.Errorf("%w: no zip entry named %q", lfh.ErrEntryNotFound, entry)
}

func loadArchives(ctx context.Context, a *Archive, entry string) (data []byte, err error) {
	found := false
	err = archives.Zip{}.Extract(ctx, a.File(), func(ctx context.Context, info archives.FileInfo) error {
		if info.NameInArchive != entry {
			return nil
		}

		f, err := info.Open()
		if err != nil {
			return err
		}
		defer f.Close()

		if data, err = io.ReadAll(f); err != nil {
			return err
		}

		found = true
		return fs.SkipAll
	})
	switch {
	case found:
		return data, nil
	case err != nil && !errors.Is(err, fs.SkipAll):
		return nil, fmt.Errorf("extract error: %w", err)
	default:
		return nil, fmt.Errorf("%w: no zip entry named %q", lfh.ErrEntryNotFound, entry)
	}
}

func loadParser(a *Archive, entry string) ([]byte, error) {
	f, err := lfh.FindLocalFile(a.File(), entry)
	if err != nil {
		return nil, err
	}

	_, data, err := f.ExtractUncompressed()
	return data, err
}

// List returns the names of the entries in the archive.
//
// Strategy Zip reads the central directory while Parser walks the local file headers; the two may differ for
// archives with stale or missing central directories. Strategy File is not supported.
func List(ctx context.Context, strategy Strategy, archive string, optFns ...func(*Options)) (names []string, err error) {
	switch strategy {
	case Zip, Parser:
	default:
		return nil, fmt.Errorf("strategy %q does not support listing", strategy)
	}

	a, err := Open(ctx, archive, optFns...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close archive error: %w", cerr)
		}
	}()

	if strategy == Parser {
		return lfh.Names(a.File())
	}

	zr, err := zip.NewReader(a.File(), a.Size)
	if err != nil {
		return nil, fmt.Errorf("open zip reader error: %w", err)
	}

	names = make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	return names, nil
}
