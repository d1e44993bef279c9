package cmd

import (
	"context"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipentry/internal/config"
)

type Zipentry struct {
	Profile string  `short:"p" long:"profile" description:"the AWS profile to use for s3:// archives; takes precedence over .zipentry setting"`
	Extract Extract `command:"extract" alias:"x" description:"extract one entry from an archive"`
	List    List    `command:"list" alias:"ls" description:"list the entries of an archive"`
	Raw     Raw     `command:"raw" description:"dump the raw local file record of one entry"`
	Serve   Serve   `command:"serve" description:"serve the entries of an archive over HTTP"`
}

func NewParser() (*flags.Parser, error) {
	opts := &Zipentry{}

	p := flags.NewNamedParser("zipentry", flags.Default)
	if _, err := p.AddGroup("Global Options", "", opts); err != nil {
		return nil, err
	}

	p.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}

		if _, err := config.LoadProfile(context.Background(), opts.Profile); err != nil {
			return err
		}

		return command.Execute(args)
	}

	return p, nil
}
