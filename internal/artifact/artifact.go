// Package artifact describes where a packaged archive lives when it is handed
// to the platform, and stores archives in S3 when they are too large to send
// inline.
package artifact

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Location is an uploaded archive.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// Code is the archive as the platform receives it: either inline bytes or a
// stored location.
type Code struct {
	ZipFile  []byte
	Location *Location
}

// Inline wraps archive bytes.
func Inline(data []byte) Code {
	return Code{ZipFile: data}
}

// Stored references an uploaded archive.
func Stored(loc Location) Code {
	return Code{Location: &loc}
}

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads archives to a bucket.
type S3Store struct {
	Bucket string
	Prefix string
	client S3API
}

// NewS3Store creates a store writing below prefix in bucket.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
		client: client,
	}
}

// Key returns the object key for a unit's archive. The digest keeps
// different builds of the same unit apart.
func (s *S3Store) Key(name, digest string) string {
	return path.Join(s.Prefix, name, digest+".zip")
}

// Put uploads an archive and returns its location.
func (s *S3Store) Put(ctx context.Context, name, digest string, data []byte) (Location, error) {
	key := s.Key(name, digest)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return Location{}, fmt.Errorf("upload %s to s3://%s/%s: %w", name, s.Bucket, key, err)
	}
	return Location{Bucket: s.Bucket, Key: key}, nil
}
