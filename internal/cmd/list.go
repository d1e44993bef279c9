package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipentry/internal"
	"github.com/nguyengg/zipentry/internal/load"
)

type List struct {
	Strategy string `short:"s" long:"strategy" choice:"zip" choice:"parser" default:"parser" description:"parser walks the local file headers while zip reads the central directory"`
	Args     struct {
		Archive flags.Filename `positional-arg-name:"archive" description:"the local path or s3://bucket/key of the ZIP archive" required:"yes"`
	} `positional-args:"yes"`
}

func (c *List) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	strategy, err := load.ParseStrategy(c.Strategy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	archive := string(c.Args.Archive)
	logger := internal.NewLogger(internal.Prefix(archive, "*"))

	names, err := load.List(internal.WithLogger(ctx, logger), strategy, archive)
	if err != nil {
		logger.Printf("list error: %v", err)
		return err
	}

	for _, name := range names {
		_, _ = fmt.Fprintln(os.Stdout, name)
	}

	logger.Printf("found %d entries", len(names))
	return nil
}
