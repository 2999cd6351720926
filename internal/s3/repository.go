package s3

import (
	"context"
	"io"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"
)

type Option func(*Repository)

func WithRegion(region string) Option {
	return func(r *Repository) {
		r.Region = region
	}
}

func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.Prefix = prefix
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

// WithEndpoint points the client at an S3 compatible service, e.g. minio.
// Such services usually need path style addressing as well.
func WithEndpoint(endpoint string, forcePathStyle bool) Option {
	return func(r *Repository) {
		r.Endpoint = endpoint
		r.ForcePathStyle = forcePathStyle
	}
}

// Repository writes run artifacts to objects under Bucket/Prefix.
type Repository struct {
	logger   *zap.Logger
	uploader *s3manager.Uploader

	Endpoint       string
	Region         string
	Bucket         string
	Prefix         string
	ForcePathStyle bool
}

// New builds a repository for bucket. Credentials come from the default
// AWS chain (environment, shared config, instance role).
func New(bucket string, opts ...Option) (*Repository, error) {
	r := &Repository{
		Bucket: bucket,
		Region: "us-east-1",
		logger: zap.NewNop(),
	}

	for _, o := range opts {
		o(r)
	}

	awsConfig := &aws.Config{
		Region:           aws.String(r.Region),
		S3ForcePathStyle: aws.Bool(r.ForcePathStyle),
	}
	if r.Endpoint != "" {
		awsConfig.Endpoint = aws.String(r.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}
	r.uploader = s3manager.NewUploader(sess)

	return r, nil
}

func (r *Repository) Write(ctx context.Context, key string, reader io.Reader) error {
	objPath := path.Join(r.Prefix, key)

	r.logger.Info(
		"writing object",
		zap.String("bucket", r.Bucket),
		zap.String("key", objPath),
	)

	_, err := r.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(objPath),
		Body:   reader,
	})
	return err
}
