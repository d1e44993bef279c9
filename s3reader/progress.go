package s3reader

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// WithProgressLogger adds a progress logger that logs the number of bytes downloaded with the given interval.
//
// For example, if interval is `5*time.Second`, every 5 seconds, the given logger will print `downloaded X so far (Y
// of object size Z)` where the sizes are displayed in a human-friendly format (e.g. 5 KiB, 1 MiB, etc.). Because
// ReadSeeker only downloads the ranges that are read, X is usually much smaller than Z.
func WithProgressLogger(logger *log.Logger, interval time.Duration) func(*Options) {
	return func(opts *Options) {
		opts.logger = &logLogger{
			logger: logger,
			rate:   &rate.Sometimes{Interval: interval},
		}
	}
}

// WithProgressBar adds a progress bar that displays the number of bytes downloaded.
func WithProgressBar(options ...progressbar.Option) func(*Options) {
	return func(opts *Options) {
		// don't create the progress bar here.
		// create on first write instead.
		opts.logger = &barLogger{opts: options}
	}
}

type progressLogger interface {
	io.WriteCloser
	setSize(size int64)
}

type logLogger struct {
	logger     *log.Logger
	rate       *rate.Sometimes
	n, size    int64
	getObjects int
}

var _ progressLogger = (*logLogger)(nil)

func (l *logLogger) Write(p []byte) (n int, err error) {
	n = len(p)
	l.n += int64(n)
	l.getObjects++

	l.rate.Do(func() {
		l.logger.Printf("downloaded %s so far (object size %s)", humanize.IBytes(uint64(l.n)), humanize.IBytes(uint64(l.size)))
	})

	return n, nil
}

func (l *logLogger) Close() error {
	l.logger.Printf("downloaded %s in total with %d GetObject calls (object size %s)", humanize.IBytes(uint64(l.n)), l.getObjects, humanize.IBytes(uint64(l.size)))
	return nil
}

func (l *logLogger) setSize(size int64) {
	l.size = size
}

type barLogger struct {
	bar  *progressbar.ProgressBar
	opts []progressbar.Option
	size int64
}

var _ progressLogger = (*barLogger)(nil)

func (b *barLogger) Write(p []byte) (n int, err error) {
	if b.bar == nil {
		// DefaultBytes with higher throttler to reduce flickering.
		b.bar = progressbar.NewOptions64(b.size, append([]progressbar.Option{
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowTotalBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(1 * time.Second),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true),
		}, b.opts...)...)
	}

	// ignore all errors from progress bar.
	_, _ = b.bar.Write(p)
	return len(p), nil
}

func (b *barLogger) Close() error {
	if b.bar != nil {
		return b.bar.Close()
	}

	return nil
}

func (b *barLogger) setSize(size int64) {
	b.size = size
}

type noopLogger struct {
}

var _ progressLogger = noopLogger{}

func (noopLogger) Write(p []byte) (int, error) {
	return len(p), nil
}

func (noopLogger) Close() error {
	return nil
}

func (noopLogger) setSize(int64) {
}
