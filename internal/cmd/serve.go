package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipentry/internal"
	"github.com/nguyengg/zipentry/internal/config"
	"github.com/nguyengg/zipentry/internal/serve"
)

type Serve struct {
	Addr  string `short:"a" long:"addr" description:"the address to listen on; defaults to .zipentry setting or :8080"`
	Debug bool   `long:"debug" description:"run gin in debug mode"`
	Max   string `long:"max-entry-size" default:"64MiB" description:"reject entries whose declared uncompressed size is larger than this; 0 means no limit"`
	Args  struct {
		Archive flags.Filename `positional-arg-name:"archive" description:"the local path or s3://bucket/key of the ZIP archive" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Serve) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	if c.Addr == "" {
		c.Addr = config.ForServe().Addr
	}
	maxEntrySize, err := humanize.ParseBytes(c.Max)
	if err != nil {
		return fmt.Errorf("invalid --max-entry-size: %w", err)
	}

	if !c.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	archive := string(c.Args.Archive)
	logger := internal.NewLogger(internal.Prefix(archive, "*"))
	logger.Printf("listening on %s", c.Addr)

	s := &serve.Server{Archive: archive, MaxEntrySize: int64(maxEntrySize), Logger: logger}
	if err := s.ListenAndServe(ctx, c.Addr); err != nil {
		logger.Printf("serve error: %v", err)
		return err
	}

	logger.Printf("stopped")
	return nil
}
