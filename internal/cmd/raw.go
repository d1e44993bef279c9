package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipentry/internal"
	"github.com/nguyengg/zipentry/internal/load"
	"github.com/nguyengg/zipentry/zip/lfh"
)

type Raw struct {
	Output string `short:"o" long:"output" description:"write the record to this file instead of stdout; a numeric suffix is added if the file already exists"`
	Args   struct {
		Archive flags.Filename `positional-arg-name:"archive" description:"the local path or s3://bucket/key of the ZIP archive" required:"yes"`
		Entry   string         `positional-arg-name:"entry" description:"the name of the entry" required:"yes"`
	} `positional-args:"yes"`
}

// Execute writes the local file header, name, extra field, and compressed payload of the entry exactly as they appear
// in the archive.
func (c *Raw) Execute(args []string) (err error) {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	archive := string(c.Args.Archive)
	logger := internal.NewLogger(internal.Prefix(archive, c.Args.Entry))

	a, err := load.Open(ctx, archive, withProgressLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	f, err := lfh.FindLocalFile(a.File(), c.Args.Entry)
	if err != nil {
		logger.Printf("find error: %v", err)
		return err
	}

	h := f.Header()
	logger.Printf("found at offset %d: method %d, compressed %s, uncompressed %s, modified %s, data descriptor %t",
		f.Offset(),
		h.CompressionMethod,
		humanize.IBytes(uint64(h.CompressedSize)),
		humanize.IBytes(uint64(h.UncompressedSize)),
		h.Modified().Format("2006-01-02 15:04:05"),
		h.HasDataDescriptor())

	_, data, err := f.ExtractCompressed()
	if err != nil {
		logger.Printf("extract error: %v", err)
		return err
	}

	if c.Output == "" || c.Output == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}

	out, err := internal.CreateExclFile(c.Output)
	if err != nil {
		return err
	}
	if _, err = out.Write(data); err != nil {
		_ = out.Close()
		return fmt.Errorf("write file error: %w", err)
	}

	logger.Printf(`wrote %d bytes to "%s"`, len(data), out.Name())
	return out.Close()
}
