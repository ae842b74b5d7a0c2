package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignTTL = 15 * time.Minute

// Indirections over the AWS SDK so tests can stub the network edge
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

type Config struct {
	// S3 compatible endpoint, e.g. a MinIO address
	Endpoint string
	Region   string
	Bucket   string

	AccessKey string
	SecretKey string
}

// Presigner hands out short lived upload URLs for thumbnail images.
// The service never proxies image bytes: the client uploads straight
// to the blob store and only the resulting URL is stored on the blog.
type Presigner struct {
	cfg Config
}

func NewPresigner(cfg Config) *Presigner {
	return &Presigner{cfg: cfg}
}

// UploadURL returns a presigned PUT url and the public url the object
// will be readable at once uploaded
func (p *Presigner) UploadURL(ctx context.Context) (uploadURL string, publicURL string, err error) {
	presignClient, err := p.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	key := randomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &p.cfg.Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", "", fmt.Errorf("error while presigning upload url. Err: %w", err)
	}

	return req.URL, fmt.Sprintf("%s/%s/%s", p.cfg.Endpoint, p.cfg.Bucket, key), nil
}

func (p *Presigner) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.cfg.AccessKey,
			p.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.cfg.Endpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("thumbnails/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
