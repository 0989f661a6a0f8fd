package publish

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/gyeh/schoolcases/internal/export"
	"github.com/gyeh/schoolcases/internal/normalize"
)

// PutObjectAPI is the slice of the S3 client the publisher uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config locates the bucket artifacts are published to.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	KeyPrefix string
	AccessKey string
	SecretKey string
}

// S3 uploads artifacts as public-read objects under a key prefix.
type S3 struct {
	client PutObjectAPI
	bucket string
	prefix string
	runID  string
	log    zerolog.Logger
}

// NewS3Client builds an S3 client from the default credential chain, or
// from static keys when both are set. A custom endpoint switches to
// path-style addressing for S3-compatible stores.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3 returns a publisher writing through client.
func NewS3(client PutObjectAPI, bucket, prefix, runID string, log zerolog.Logger) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix, runID: runID, log: log}
}

// Key returns the object key for an artifact name.
func (p *S3) Key(name string) string {
	if p.prefix == "" {
		return name
	}
	return strings.TrimSuffix(p.prefix, "/") + "/" + name
}

// Publish uploads every artifact. Uploads are sequential; the first failure
// stops the run and is returned with the offending key.
func (p *S3) Publish(ctx context.Context, artifacts []export.Artifact) ([]string, error) {
	var uploaded []string
	for _, a := range artifacts {
		key := p.Key(a.Name)
		meta := map[string]string{
			"run-id": p.runID,
			"sha256": normalize.ContentHash(a.Body),
		}
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(p.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(a.Body),
			ContentLength: aws.Int64(int64(len(a.Body))),
			ContentType:   aws.String(a.ContentType),
			ACL:           types.ObjectCannedACLPublicRead,
			Metadata:      meta,
		})
		if err != nil {
			return uploaded, fmt.Errorf("put s3://%s/%s: %w", p.bucket, key, err)
		}
		loc := fmt.Sprintf("s3://%s/%s", p.bucket, key)
		p.log.Info().Str("object", loc).Int("bytes", len(a.Body)).Msg("artifact uploaded")
		uploaded = append(uploaded, loc)
	}
	return uploaded, nil
}
