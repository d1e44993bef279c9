// Package s3reader provides an io.ReadSeeker and io.ReaderAt over an S3 object using ranged GetObject calls.
//
// It lets lfh.FindLocalFile locate an entry in a large ZIP archive stored in S3 while only downloading the local file
// headers it visits and the payload of the matching entry.
package s3reader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultBufferSize is the default value of [Options.BufferSize].
const DefaultBufferSize int64 = 64 * 1024

// ErrNegativeOffset is returned by Seek if the resulting offset would be negative.
var ErrNegativeOffset = errors.New("seek would end up before start of file")

// ReadSeeker uses ranged GetObject to implement io.ReadSeeker and io.ReaderAt.
//
// ReadSeeker is not safe for concurrent use, with the exception of ReadAt which does not change any state.
type ReadSeeker interface {
	io.ReadSeeker
	io.ReaderAt

	// Size returns the size of the S3 object.
	Size() int64
}

// ReaderClient abstracts the API that is needed by NewWithSize.
type ReaderClient interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client abstracts the APIs that are needed by New.
type Client interface {
	ReaderClient
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Options customises New and NewWithSize.
type Options struct {
	// ModifyGetObjectInput can be used to modify the GetObject input parameters such as adding ExpectedBucketOwner.
	//
	// Its return value will be used to make the GetObject call.
	ModifyGetObjectInput func(*s3.GetObjectInput) *s3.GetObjectInput

	// ModifyHeadObjectInput can be used to modify the HeadObject input parameters such as adding
	// ExpectedBucketOwner.
	//
	// Its return value will be used to make the HeadObject call. This value is only used by New.
	ModifyHeadObjectInput func(*s3.HeadObjectInput) *s3.HeadObjectInput

	// BufferSize is the minimum number of bytes requested by each GetObject call made by Read.
	//
	// Small reads such as the 30-byte local file headers are served from this buffer. Default to DefaultBufferSize.
	BufferSize int64

	logger progressLogger
}

// New returns a ReadSeeker for the given bucket and key.
//
// A HeadObject call is made to determine the size of the object.
func New(ctx context.Context, client Client, bucket, key string, optFns ...func(*Options)) (ReadSeeker, error) {
	opts := newOptions(optFns)

	headObjectOutput, err := client.HeadObject(ctx, opts.ModifyHeadObjectInput(&s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}))
	if err != nil {
		return nil, fmt.Errorf("determine size of s3://%s/%s error: %w", bucket, key, err)
	}

	return newReadSeeker(ctx, client, bucket, key, aws.ToInt64(headObjectOutput.ContentLength), opts), nil
}

// NewWithSize returns a ReadSeeker for the given bucket, key, and size.
func NewWithSize(ctx context.Context, client ReaderClient, bucket, key string, size int64, optFns ...func(*Options)) ReadSeeker {
	return newReadSeeker(ctx, client, bucket, key, size, newOptions(optFns))
}

func newOptions(optFns []func(*Options)) *Options {
	opts := &Options{
		ModifyGetObjectInput: func(input *s3.GetObjectInput) *s3.GetObjectInput {
			return input
		},
		ModifyHeadObjectInput: func(input *s3.HeadObjectInput) *s3.HeadObjectInput {
			return input
		},
		BufferSize: DefaultBufferSize,
		logger:     noopLogger{},
	}
	for _, fn := range optFns {
		fn(opts)
	}

	return opts
}

func newReadSeeker(ctx context.Context, client ReaderClient, bucket, key string, size int64, opts *Options) *readSeeker {
	opts.logger.setSize(size)

	return &readSeeker{
		ctx:                  ctx,
		client:               client,
		bucket:               bucket,
		key:                  key,
		size:                 size,
		bufferSize:           max(1, opts.BufferSize),
		modifyGetObjectInput: opts.ModifyGetObjectInput,
		logger:               opts.logger,
	}
}

type readSeeker struct {
	ctx                  context.Context
	client               ReaderClient
	bucket, key          string
	size                 int64
	bufferSize           int64
	modifyGetObjectInput func(*s3.GetObjectInput) *s3.GetObjectInput
	logger               progressLogger

	// off is the current read offset.
	off int64
	// buf contains the object's data starting at bufOff.
	buf    []byte
	bufOff int64
}

func (r *readSeeker) Size() int64 {
	return r.size
}

func (r *readSeeker) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.off >= r.size {
		return 0, io.EOF
	}

	// refill the buffer if the current offset is not in it.
	if r.off < r.bufOff || r.off >= r.bufOff+int64(len(r.buf)) {
		end := min(r.size, r.off+max(int64(len(p)), r.bufferSize))
		if r.buf, err = r.get(r.off, end); err != nil {
			r.buf = nil
			return 0, err
		}
		r.bufOff = r.off
	}

	n = copy(p, r.buf[r.off-r.bufOff:])
	r.off += int64(n)
	return n, nil
}

func (r *readSeeker) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= r.size {
		return 0, io.EOF
	}

	end := min(r.size, off+int64(len(p)))
	data, err := r.get(off, end)
	n = copy(p, data)
	if err == nil && n < len(p) {
		err = io.EOF
	}

	return n, err
}

func (r *readSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += r.off
	case io.SeekEnd:
		offset += r.size
	default:
		return r.off, fmt.Errorf("invalid whence: %d", whence)
	}

	if offset < 0 {
		return r.off, ErrNegativeOffset
	}

	r.off = offset
	return r.off, nil
}

// get downloads bytes [start, end) of the object.
func (r *readSeeker) get(start, end int64) ([]byte, error) {
	getObjectOutput, err := r.client.GetObject(r.ctx, r.modifyGetObjectInput(&s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end-1)),
	}))
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s (bytes=%d-%d) error: %w", r.bucket, r.key, start, end-1, err)
	}
	defer getObjectOutput.Body.Close()

	data := make([]byte, end-start)
	n, err := io.ReadFull(getObjectOutput.Body, data)
	_, _ = r.logger.Write(data[:n])
	if err != nil {
		return data[:n], fmt.Errorf("read s3://%s/%s (bytes=%d-%d) error: %w", r.bucket, r.key, start, end-1, err)
	}

	return data, nil
}

// Close flushes the progress logger, if any.
//
// The ReadSeeker returned by New and NewWithSize also implements io.Closer.
func (r *readSeeker) Close() error {
	return r.logger.Close()
}
