package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/weft-dev/weft/internal/errors"
)

// ObjectStore is the slice of the S3 API the archiver uses. *s3.Client
// satisfies it; tests substitute a fake.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Archiver persists snapshots to an S3 bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	arch := snapshot.NewArchiver(s3.NewFromConfig(cfg), "my-bucket", "snapshots/")
//	key, _ := arch.Put(ctx, snapshot.Capture(store))
type Archiver struct {
	client ObjectStore
	bucket string
	prefix string
	now    func() time.Time
}

// NewArchiver creates an archiver writing under prefix in bucket.
func NewArchiver(client ObjectStore, bucket, prefix string) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Put serializes the snapshot and uploads it, returning the object key.
// Keys embed a UTC timestamp so a bucket listing sorts chronologically.
func (a *Archiver) Put(ctx context.Context, snap *Snapshot) (string, error) {
	data, err := Serialize(snap)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s%s.json", a.prefix, a.now().UTC().Format("20060102T150405.000000000Z"))
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", errors.New("E201").WithDetailf("key %s", key).Wrap(err)
	}
	return key, nil
}

// Get downloads and decodes an archived snapshot by key.
func (a *Archiver) Get(ctx context.Context, key string) (*Snapshot, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("E202").WithDetailf("key %s", key).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	return Deserialize(data)
}

// List returns the archived snapshot keys under the prefix, ascending.
func (a *Archiver) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(a.prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Prune removes archived snapshots older than maxAge.
func (a *Archiver) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := a.now().Add(-maxAge)

	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(a.prefix),
	})

	var toDelete []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		for _, obj := range page.Contents {
			if obj.LastModified != nil && obj.LastModified.Before(cutoff) && obj.Key != nil {
				toDelete = append(toDelete, *obj.Key)
			}
		}
	}

	deleted := 0
	for _, key := range toDelete {
		_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
