// Package objectstore keeps transcripts in an S3-compatible bucket
// (AWS S3 or MinIO).
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/xilidan/transcriber/services/asr/entity"
	"github.com/xilidan/transcriber/services/asr/storage"
)

const (
	textSuffix = ".txt"
	nameSuffix = ".filename"

	contentTypeText = "text/plain; charset=utf-8"
)

// API is the subset of the S3 client the store needs.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewClient builds an S3 client. A non-empty Endpoint switches to
// path-style addressing for MinIO.
func NewClient(ctx context.Context, opts Options) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type TextStore struct {
	api    API
	bucket string
	prefix string
}

func NewTextStore(api API, bucket, prefix string) *TextStore {
	return &TextStore{api: api, bucket: bucket, prefix: prefix}
}

func (s *TextStore) textKey(id string) string { return s.prefix + id + textSuffix }
func (s *TextStore) nameKey(id string) string { return s.prefix + id + nameSuffix }

func checkID(id string) error {
	if !storage.ValidID(id) {
		return fmt.Errorf("transcript id %q: %w", id, entity.ErrInvalidRequest)
	}
	return nil
}

func (s *TextStore) put(ctx context.Context, key, body string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(body)),
		ContentType: aws.String(contentTypeText),
	})
	return err
}

// get returns the object body; found is false on a missing key.
func (s *TextStore) get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (s *TextStore) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	return s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
}

func (s *TextStore) SaveText(ctx context.Context, id, text string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.put(ctx, s.textKey(id), text); err != nil {
		return fmt.Errorf("failed to save transcript %s: %w", id, err)
	}
	return nil
}

func (s *TextStore) SaveCustomName(ctx context.Context, id, name string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.put(ctx, s.nameKey(id), name); err != nil {
		return fmt.Errorf("failed to save custom name %s: %w", id, err)
	}
	return nil
}

func (s *TextStore) ReadText(ctx context.Context, id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	text, found, err := s.get(ctx, s.textKey(id))
	if err != nil {
		return "", fmt.Errorf("failed to read transcript %s: %w", id, err)
	}
	if !found {
		return "", fmt.Errorf("transcript %s: %w", id, entity.ErrNotFound)
	}
	return text, nil
}

func (s *TextStore) ReadCustomName(ctx context.Context, id string) (string, bool, error) {
	if err := checkID(id); err != nil {
		return "", false, err
	}
	name, found, err := s.get(ctx, s.nameKey(id))
	if err != nil {
		return "", false, fmt.Errorf("failed to read custom name %s: %w", id, err)
	}
	return name, found, nil
}

func (s *TextStore) Exists(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	_, err := s.head(ctx, s.textKey(id))
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat transcript %s: %w", id, err)
	}
	return true, nil
}

func (s *TextStore) ModTime(ctx context.Context, id string) (time.Time, error) {
	if err := checkID(id); err != nil {
		return time.Time{}, err
	}
	out, err := s.head(ctx, s.textKey(id))
	if isNotFound(err) {
		return time.Time{}, fmt.Errorf("transcript %s: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat transcript %s: %w", id, err)
	}
	return aws.ToTime(out.LastModified), nil
}

// isNotFound matches the typed S3 errors as well as the bare codes some
// S3-compatible servers return.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
