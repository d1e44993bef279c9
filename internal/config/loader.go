package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-ini/ini"
)

// FileName is the name of the configuration file.
const FileName = ".zipentry"

// Loader can be used for loading .zipentry configuration as well as overridden with default settings.
type Loader struct {
	// Profile is the AWS profile to use, taking precedence over bucket-based AWS profile setting.
	Profile string

	cfg           *ini.File
	s3clientCache sync.Map
}

// Load will traverse the directory hierarchy upwards from the current working directory to find the first .zipentry
// file available and load its contents into the Loader.
//
// The name of the .zipentry file is returned. An empty name and nil error are returned if there is no such file.
func (l *Loader) Load(ctx context.Context) (string, error) {
	cur, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return l.LoadFrom(ctx, cur)
}

// LoadFrom is a variant of Load that starts the traversal at the given directory.
func (l *Loader) LoadFrom(ctx context.Context, dir string) (string, error) {
	path, err := find(ctx, dir)
	if err != nil || path == "" {
		return "", err
	}

	l.cfg, err = ini.Load(path)
	if err != nil {
		l.cfg = ini.Empty()
		return path, err
	}

	return path, nil
}

// find returns the path to the closest .zipentry file in dir or its ancestors.
func find(ctx context.Context, dir string) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		path := filepath.Join(dir, FileName)
		fi, err := os.Stat(path)
		switch {
		case err == nil && !fi.IsDir():
			return path, nil
		case err != nil && !os.IsNotExist(err):
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir || parent == "." {
			return "", nil
		}

		dir = parent
	}
}

// LoadProfile is a convenient method to set Loader.Profile then call Load.
func (l *Loader) LoadProfile(ctx context.Context, profile string) (string, error) {
	l.Profile = profile
	return l.Load(ctx)
}

// DefaultLoader is the default Loader instance for package-level methods.
var DefaultLoader = NewLoader()

// NewLoader returns a Loader with empty configuration.
func NewLoader() *Loader {
	return &Loader{cfg: ini.Empty()}
}

// Load calls Loader.Load on the DefaultLoader instance.
func Load(ctx context.Context) (string, error) {
	return DefaultLoader.Load(ctx)
}

// LoadProfile calls Loader.LoadProfile on the DefaultLoader instance.
func LoadProfile(ctx context.Context, profile string) (string, error) {
	return DefaultLoader.LoadProfile(ctx, profile)
}
