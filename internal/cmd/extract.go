package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipentry/internal"
	"github.com/nguyengg/zipentry/internal/config"
	"github.com/nguyengg/zipentry/internal/load"
	"github.com/nguyengg/zipentry/s3reader"
)

type Extract struct {
	Strategy string `short:"s" long:"strategy" choice:"file" choice:"zip" choice:"parser" choice:"archives" description:"how to load the entry; defaults to .zipentry setting or parser"`
	Prefetch bool   `long:"prefetch" description:"download s3:// archives in their entirety with concurrent ranged GetObject calls before loading"`
	Output   string `short:"o" long:"output" description:"write the entry to this file instead of stdout; a numeric suffix is added if the file already exists"`
	Stats    bool   `long:"stats" description:"print heap usage before and after loading the entry"`
	Args     struct {
		Archive flags.Filename `positional-arg-name:"archive" description:"the local path or s3://bucket/key of the ZIP archive; with --strategy file, a lone argument is the entry path instead"`
		Entry   string         `positional-arg-name:"entry" description:"the name of the entry; defaults to .zipentry setting or lua/init.lua"`
	} `positional-args:"yes"`
}

func (c *Extract) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	cfg := config.ForDefault()
	name := c.Strategy
	if name == "" {
		name = cfg.Strategy
	}

	strategy, err := load.ParseStrategy(name)
	if err != nil {
		return err
	}

	archive, entry := string(c.Args.Archive), c.Args.Entry
	switch {
	case strategy == load.File && entry == "":
		// the file strategy never opens an archive so its only positional argument is the entry.
		archive, entry = "", archive
	case strategy != load.File && archive == "":
		return fmt.Errorf("archive is required with --strategy %s", strategy)
	}
	if entry == "" {
		entry = cfg.Entry
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	logger := internal.NewLogger(internal.Prefix(archive, entry))
	ctx = internal.WithLogger(ctx, logger)

	logger.Printf("start loading with strategy %s", strategy)
	res, err := load.Load(ctx, strategy, archive, entry, withProgressLogger(logger), func(opts *load.Options) {
		opts.Prefetch = c.Prefetch
	})
	if err != nil {
		logger.Printf("load error: %v", err)
		return err
	}

	if c.Stats {
		logger.Printf("before: %s", res.Before)
		logger.Printf("after: %s", res.After)
		logger.Printf("delta: %s", res.After.Sub(res.Before))
	}

	return c.write(ctx, entry, res.Data)
}

func (c *Extract) write(ctx context.Context, entry string, data []byte) (err error) {
	logger := internal.Logger(ctx)

	if c.Output == "" || c.Output == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}

	f, err := internal.CreateExclFile(c.Output)
	if err != nil {
		return err
	}

	bar := internal.NewEntryBar(int64(len(data)), entry)
	sizer := &internal.Sizer{}
	_, err = io.Copy(io.MultiWriter(f, bar, sizer), bytes.NewReader(data))
	_ = bar.Close()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write file error: %w", err)
	}

	logger.Printf(`wrote %d bytes to "%s"`, sizer.Size, f.Name())
	return nil
}

// withProgressLogger logs download progress of s3:// archives every few seconds.
func withProgressLogger(logger *log.Logger) func(*load.Options) {
	return func(opts *load.Options) {
		opts.ReaderOptions = append(opts.ReaderOptions, s3reader.WithProgressLogger(logger, 5*time.Second))
	}
}
