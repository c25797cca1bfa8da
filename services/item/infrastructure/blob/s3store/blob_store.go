// Package s3store stores item images in an S3 (or MinIO) bucket, one object
// per upload.
package s3store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/ghuser/lostfound/pkg/config"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
)

// ErrInvalidURL is returned when a URL does not address an object in this store.
var ErrInvalidURL = errors.New("url does not address a stored object")

// legacyObjectURL matches virtual-hosted S3 URLs written by earlier intake handlers.
var legacyObjectURL = regexp.MustCompile(`amazonaws\.com/(.+)$`)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// API is the subset of the S3 client used by the store.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// BlobStore implements repositories.BlobStore on S3.
type BlobStore struct {
	api     API
	bucket  string
	baseURL string
}

// NewBlobStore builds an S3 client from config. S3_ENDPOINT selects a
// MinIO-compatible endpoint with path-style addressing; S3_ACCESS_KEY and
// S3_SECRET_KEY override the default credential chain.
func NewBlobStore(ctx context.Context, cfg *config.Config) (*BlobStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return New(client, cfg.S3Bucket, PublicBaseURL(cfg)), nil
}

// PublicBaseURL returns the URL prefix under which stored objects are reachable.
func PublicBaseURL(cfg *config.Config) string {
	switch {
	case cfg.S3PublicBaseURL != "":
		return strings.TrimRight(cfg.S3PublicBaseURL, "/")
	case cfg.S3Endpoint != "":
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.AWSRegion)
	}
}

// New returns a BlobStore over any implementation of API.
func New(api API, bucket, baseURL string) *BlobStore {
	return &BlobStore{api: api, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

// Put stores data at a fresh key beneath pathHint and returns its public URL.
// Every call writes a new object, so deleting one item's image never removes
// an image another item still references.
func (b *BlobStore) Put(ctx context.Context, data []byte, contentType, pathHint string) (string, error) {
	key := ObjectKey(data, contentType, pathHint)

	_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %s: %w", itemdomain.ErrBlobStore, key, err)
	}
	return b.baseURL + "/" + escapeKey(key), nil
}

// Delete removes the object addressed by rawURL.
func (b *BlobStore) Delete(ctx context.Context, rawURL string) error {
	key, err := b.KeyFromURL(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", itemdomain.ErrBlobStore, err)
	}

	if _, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("%w: delete object %s: %w", itemdomain.ErrBlobStore, key, err)
	}
	return nil
}

// Ping checks that the bucket exists and is reachable.
func (b *BlobStore) Ping(ctx context.Context) error {
	if _, err := b.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err != nil {
		return fmt.Errorf("s3 head bucket %s: %w", b.bucket, err)
	}
	return nil
}

// KeyFromURL recovers the object key from a URL returned by Put or written
// by the legacy intake handlers.
func (b *BlobStore) KeyFromURL(rawURL string) (string, error) {
	var escaped string
	if rest, ok := strings.CutPrefix(rawURL, b.baseURL+"/"); ok {
		escaped = rest
	} else if m := legacyObjectURL.FindStringSubmatch(rawURL); m != nil {
		escaped = m[1]
	} else {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	key, err := url.PathUnescape(escaped)
	if err != nil || key == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return key, nil
}

// contentTagBytes is how much of the sha256 digest is kept in object names.
const contentTagBytes = 8

// ObjectKey returns a new key <pathHint>/<uuid>-<tag>.<ext> for data, where
// tag is a truncated sha256 of the content. Keys are unique per call.
func ObjectKey(data []byte, contentType, pathHint string) string {
	sum := sha256.Sum256(data)
	ext, ok := extensions[contentType]
	if !ok {
		ext = "bin"
	}
	name := uuid.NewString() + "-" + hex.EncodeToString(sum[:contentTagBytes]) + "." + ext

	hint := strings.Trim(pathHint, "/")
	if hint == "" {
		return name
	}
	return hint + "/" + name
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
