// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// maxPresignTTL is the longest expiry S3 accepts for a SigV4 presigned URL.
const maxPresignTTL = 7 * 24 * time.Hour

// S3Options configures [NewS3Store].
type S3Options struct {
	Bucket   string
	Region   string
	Endpoint string

	// Static credentials; when empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// CDN signs URLs through CloudFront instead of S3 presigning when set.
	CDN *CDNSigner
}

// S3Store implements [Store] using Amazon S3.
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	cdn       *CDNSigner
}

// NewS3Store loads the AWS configuration and builds an S3 client.
func NewS3Store(context context.Context, options S3Options) (*S3Store, error) {
	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(options.Region),
	}

	if options.AccessKeyID != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(options.AccessKeyID, options.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    options.Bucket,
		cdn:       options.CDN,
	}, nil
}

// Put implements [Store].
func (store *S3Store) Put(context context.Context, key string, body io.Reader, contentType string) error {
	_, err := store.client.PutObject(context, &s3.PutObjectInput{
		Bucket:      aws.String(store.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3_put_object_failed: %w", err)
	}
	return nil
}

// Delete implements [Store].
func (store *S3Store) Delete(context context.Context, key string) error {
	_, err := store.client.DeleteObject(context, &s3.DeleteObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return ErrNotFound
		}
		return fmt.Errorf("s3_delete_object_failed: %w", err)
	}
	return nil
}

// SignedURL implements [Store].
func (store *S3Store) SignedURL(context context.Context, key string, ttl time.Duration) (string, error) {
	if store.cdn != nil {
		return store.cdn.Sign(key, ttl)
	}

	if ttl > maxPresignTTL {
		ttl = maxPresignTTL
	}

	request, err := store.presigner.PresignGetObject(context, &s3.GetObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3_presign_failed: %w", err)
	}

	return request.URL, nil
}

// Ping checks that the bucket is reachable with the configured credentials.
func (store *S3Store) Ping(context context.Context) error {
	_, err := store.client.HeadBucket(context, &s3.HeadBucketInput{Bucket: aws.String(store.bucket)})
	return err
}
