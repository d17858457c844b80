// Package storage keeps avatar and post images in S3.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"devagram/internal/validation"
)

const (
	AvatarPrefix = "avatar"
	PostPrefix   = "post"
)

// File is an uploaded multipart part.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ImageStore interface {
	SaveImage(ctx context.Context, bucket, prefix string, f File) (string, error)
	SignedURL(ctx context.Context, bucket, key string) (string, error)
}

type PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type PresignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Images struct {
	put     PutAPI
	presign PresignAPI
	ttl     time.Duration
	newID   func() string
}

func NewS3Images(client *s3.Client, ttl time.Duration) *S3Images {
	return newS3Images(client, s3.NewPresignClient(client), ttl)
}

func newS3Images(put PutAPI, presign PresignAPI, ttl time.Duration) *S3Images {
	return &S3Images{put: put, presign: presign, ttl: ttl, newID: uuid.NewString}
}

// ObjectKey names an upload <prefix>-<uuid><ext>, keeping the extension as sent.
func ObjectKey(prefix, id, filename string) string {
	return fmt.Sprintf("%s-%s%s", prefix, id, validation.ImageExtension(filename))
}

func (s *S3Images) SaveImage(ctx context.Context, bucket, prefix string, f File) (string, error) {
	key := ObjectKey(prefix, s.newID(), f.Filename)

	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(f.Data),
		ACL:    s3types.ObjectCannedACLPrivate,
	}
	if f.ContentType != "" {
		in.ContentType = aws.String(f.ContentType)
	}
	if _, err := s.put.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("s3 putobject %s: %w", key, err)
	}
	return key, nil
}

func (s *S3Images) SignedURL(ctx context.Context, bucket, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}
