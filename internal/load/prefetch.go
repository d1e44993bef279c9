package load

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/zipentry/internal"
	"github.com/nguyengg/zipentry/s3reader"
)

// countingClient counts the successful GetObject calls made by manager.Downloader.
//
// GetObject may be called from any of the goroutines that download parts in parallel.
type countingClient struct {
	manager.DownloadAPIClient
	parts     atomic.Int32
	partCount int32
	logger    *log.Logger
}

func (c *countingClient) GetObject(ctx context.Context, input *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	output, err := c.DownloadAPIClient.GetObject(ctx, input, optFns...)
	if err == nil && c.logger != nil {
		if v := c.parts.Add(1); v == c.partCount {
			c.logger.Printf("downloaded %d/%d parts", v, c.partCount)
		} else {
			c.logger.Printf("downloaded %d/%d parts so far", v, c.partCount)
		}
	}

	return output, err
}

// prefetch downloads the entire object into memory with concurrent ranged GetObject calls.
//
// The returned Archive is backed by a bytes.Reader so no more S3 calls are made.
func prefetch(ctx context.Context, name string, client s3reader.Client, bucket, key string, owner *string, partSize int64) (*Archive, error) {
	headObjectOutput, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket:              aws.String(bucket),
		Key:                 aws.String(key),
		ExpectedBucketOwner: owner,
	})
	if err != nil {
		return nil, fmt.Errorf("determine size of %s error: %w", name, err)
	}

	size := aws.ToInt64(headObjectOutput.ContentLength)
	if partSize <= 0 {
		partSize = manager.DefaultDownloadPartSize
	}

	counter := &countingClient{
		DownloadAPIClient: client,
		partCount:         int32(max(1, (size+partSize-1)/partSize)),
		logger:            internal.Logger(ctx),
	}

	buf := manager.NewWriteAtBuffer(make([]byte, 0, size))
	n, err := manager.NewDownloader(counter, func(d *manager.Downloader) {
		d.PartSize = partSize
	}).Download(ctx, buf, &s3.GetObjectInput{
		Bucket:              aws.String(bucket),
		Key:                 aws.String(key),
		ExpectedBucketOwner: owner,
	})
	if err != nil {
		return nil, fmt.Errorf("download %s error: %w", name, err)
	}

	return &Archive{Name: name, Size: n, f: bytes.NewReader(buf.Bytes()[:n])}, nil
}
