// Package backup uploads JSON snapshots of the client state to an
// S3-compatible bucket through presigned PUT urls.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/oskolki/internal/logging"
	"github.com/dmitrijs2005/oskolki/internal/netx"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

var ErrNotConfigured = errors.New("backup bucket is not configured")

const contentType = "application/json"

type Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
	// Expires bounds the lifetime of the presigned url.
	Expires time.Duration
}

type Archiver struct {
	opts       Options
	httpClient *http.Client
	log        logging.Logger
	now        func() time.Time
}

func NewArchiver(opts Options, httpClient *http.Client, log logging.Logger) *Archiver {
	if opts.Expires <= 0 {
		opts.Expires = 15 * time.Minute
	}
	if opts.Prefix == "" {
		opts.Prefix = "snapshots"
	}
	return &Archiver{opts: opts, httpClient: httpClient, log: log, now: time.Now}
}

func (a *Archiver) Enabled() bool {
	return a.opts.Bucket != ""
}

func (a *Archiver) storageKey() string {
	d := a.now().UTC()
	return fmt.Sprintf("%s/%d/%d/%d/%v.json", strings.Trim(a.opts.Prefix, "/"), d.Year(), d.Month(), d.Day(), uuid.New())
}

func (a *Archiver) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(a.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.opts.AccessKey,
			a.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if a.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.opts.Endpoint)
			// MinIO serves buckets by path
			o.UsePathStyle = true
		}
	})
	return newS3PresignClient(client), nil
}

// Upload marshals snapshot to JSON and stores it under a fresh dated key,
// which is returned.
func (a *Archiver) Upload(ctx context.Context, snapshot any) (string, error) {
	if !a.Enabled() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	pc, err := a.presignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 config: %w", err)
	}

	bucket := a.opts.Bucket
	key := a.storageKey()
	ct := contentType
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &ct,
	}, s3.WithPresignExpires(a.opts.Expires))
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}

	if err := netx.PutPresigned(ctx, a.httpClient, req.URL, contentType, body); err != nil {
		return "", err
	}

	a.log.Info(ctx, "snapshot uploaded", "bucket", bucket, "key", key, "bytes", len(body))
	return key, nil
}
