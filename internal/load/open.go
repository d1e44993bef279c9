package load

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/zipentry/internal"
	"github.com/nguyengg/zipentry/internal/config"
	"github.com/nguyengg/zipentry/s3reader"
)

// ReadSeekerAt is the random-access view of an archive that all strategies need.
//
// lfh only needs io.ReadSeeker; the zip and archives strategies need io.ReaderAt.
type ReadSeekerAt interface {
	io.ReadSeeker
	io.ReaderAt
}

// Archive is an opened archive, either a local file or an S3 object.
type Archive struct {
	// Name is the local path or S3 URI that was opened.
	Name string
	// Size is the size of the archive in bytes.
	Size int64

	f      ReadSeekerAt
	closer io.Closer
}

// File returns the underlying reader.
//
// The reader is positioned wherever the last user left it. Callers that pass it to lfh give up the cursor.
func (a *Archive) File() ReadSeekerAt {
	return a.f
}

// Close releases the local file handle or flushes the S3 progress logger.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}

	return nil
}

// Options customises Open.
type Options struct {
	// NewS3Client returns the S3 client to use for the given bucket.
	//
	// Defaults to config.NewS3ClientForBucket.
	NewS3Client func(ctx context.Context, bucket string) (s3reader.Client, error)

	// ForBucket returns the bucket settings such as expected bucket owner.
	//
	// Defaults to config.ForBucket.
	ForBucket func(bucket string) config.BucketConfig

	// ReaderOptions are passed to s3reader.New for S3 archives.
	ReaderOptions []func(*s3reader.Options)

	// Prefetch downloads S3 archives into memory in their entirety with manager.Downloader instead of reading only
	// the ranges that are needed.
	Prefetch bool

	// PartSize is the part size used by Prefetch. Defaults to manager.DefaultDownloadPartSize.
	PartSize int64
}

// Open opens the named archive which can be a local path or an S3 URI in format s3://bucket/key.
//
// Caller must close the returned Archive.
func Open(ctx context.Context, name string, optFns ...func(*Options)) (*Archive, error) {
	opts := &Options{
		NewS3Client: func(ctx context.Context, bucket string) (s3reader.Client, error) {
			return config.NewS3ClientForBucket(ctx, bucket)
		},
		ForBucket: config.ForBucket,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	if internal.IsS3URI(name) {
		return openS3(ctx, name, opts)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat file error: %w", err)
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", name)
	}

	return &Archive{Name: name, Size: fi.Size(), f: f, closer: f}, nil
}

func openS3(ctx context.Context, name string, opts *Options) (*Archive, error) {
	bucket, key, err := internal.ParseS3URI(name)
	if err != nil {
		return nil, err
	}

	client, err := opts.NewS3Client(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("create S3 client error: %w", err)
	}

	owner := opts.ForBucket(bucket).ExpectedBucketOwner
	if opts.Prefetch {
		return prefetch(ctx, name, client, bucket, key, owner, opts.PartSize)
	}

	optFns := opts.ReaderOptions
	if owner != nil {
		optFns = append([]func(*s3reader.Options){func(o *s3reader.Options) {
			o.ModifyGetObjectInput = func(input *s3.GetObjectInput) *s3.GetObjectInput {
				input.ExpectedBucketOwner = owner
				return input
			}
			o.ModifyHeadObjectInput = func(input *s3.HeadObjectInput) *s3.HeadObjectInput {
				input.ExpectedBucketOwner = owner
				return input
			}
		}}, optFns...)
	}

	r, err := s3reader.New(ctx, client, bucket, key, optFns...)
	if err != nil {
		return nil, err
	}

	a := &Archive{Name: name, Size: r.Size(), f: r}
	if c, ok := r.(io.Closer); ok {
		a.closer = c
	}

	return a, nil
}
