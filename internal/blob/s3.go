package blob

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrUnknownDisk is returned when a field references a disk with no
// configured bucket.
var ErrUnknownDisk = errors.New("no bucket configured for disk")

// S3Store deletes assets from S3-compatible buckets. Each settings "disk"
// maps to one bucket.
type S3Store struct {
	client *s3.Client
	disks  map[string]string
}

// NewS3Store creates an S3-backed blob store. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Store(ctx context.Context, region, endpoint string, disks map[string]string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Store{
		client: s3.NewFromConfig(cfg, s3opts...),
		disks:  disks,
	}, nil
}

// Delete removes one object from the bucket backing the given disk.
func (s *S3Store) Delete(ctx context.Context, disk, ref string) error {
	bucket, ok := s.disks[disk]
	if !ok {
		return &StorageError{Disk: disk, Ref: ref, Err: ErrUnknownDisk}
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return &StorageError{Disk: disk, Ref: ref, Err: err}
	}

	return nil
}
