package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

// Uploads above this size go through the multipart uploader
const minMultipartSize = 12 << 20

// S3Objects implements Objects against an S3-compatible bucket
type S3Objects struct {
	C          *s3.Client
	Bucket     *string
	publicBase string
}

func NewS3Objects() (*S3Objects, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("storage.access_key_id"),
			viper.GetString("storage.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("storage.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := viper.GetString("storage.endpoint"); ep != "" {
			o.BaseEndpoint = aws.String(ep)
		}
		o.Region = viper.GetString("storage.region")
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Objects{
		C:          client,
		Bucket:     bucket,
		publicBase: strings.TrimSuffix(viper.GetString("storage.public_base_url"), "/"),
	}, nil
}

func (o *S3Objects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, onProgress ProgressFunc) error {
	body := r
	pr := &progressReader{r: r, total: size, cb: onProgress}
	if onProgress != nil {
		body = pr
	}

	input := &s3.PutObjectInput{
		Bucket:        o.Bucket,
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	}

	var err error
	if size > minMultipartSize {
		u := manager.NewUploader(o.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})
		_, err = u.Upload(ctx, input)
	} else {
		_, err = o.C.PutObject(ctx, input)
	}
	if err != nil {
		return fmt.Errorf("failed to upload object, %w", err)
	}

	// Zero-byte placeholders never tick the reader, close out explicitly
	if onProgress != nil {
		pr.finish()
	}

	return nil
}

func (o *S3Objects) Delete(ctx context.Context, key string) error {
	_, err := o.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: o.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object, %w", err)
	}

	return nil
}

func (o *S3Objects) PublicURL(key string) string {
	return o.publicBase + "/" + key
}

func (o *S3Objects) List(ctx context.Context) ([]ObjectInfo, error) {
	var out []ObjectInfo

	p := s3.NewListObjectsV2Paginator(o.C, &s3.ListObjectsV2Input{
		Bucket: o.Bucket,
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket objects, %w", err)
		}

		for _, obj := range page.Contents {
			info := ObjectInfo{Key: aws.ToString(obj.Key)}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			out = append(out, info)
		}
	}

	return out, nil
}
