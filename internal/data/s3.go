package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"bidding-trends/internal/model"
)

// S3Source reads every *.csv / *.csv.gz object under Prefix. Endpoint and
// ForcePathStyle cover S3-compatible stores such as MinIO.
type S3Source struct {
	Bucket         string
	Prefix         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	Options        CSVOptions
}

func (s S3Source) Name() string {
	return "s3://" + s.Bucket + "/" + s.Prefix
}

func (s S3Source) client(ctx context.Context) (*s3.Client, error) {
	if s.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}
	region := s.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	// static keys when given, otherwise the default chain (env, profile, role)
	if s.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if s.Endpoint != "" {
		endpoint := normaliseEndpoint(s.Endpoint)
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if s.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

// Keys lists the CSV object keys under the prefix in listing order.
func (s S3Source) Keys(ctx context.Context, c *s3.Client) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(c, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3: list %s: %w", s.Name(), err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if isCSVName(key) {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}

func (s S3Source) Load(ctx context.Context) ([]model.BidRecord, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := s.Keys(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("s3: no bid files under %s", s.Name())
	}

	out := []model.BidRecord{}
	for _, key := range keys {
		records, err := s.readObject(ctx, c, key)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	return out, nil
}

func (s S3Source) readObject(ctx context.Context, c *s3.Client, key string) ([]model.BidRecord, error) {
	obj, err := c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: get %s: %w", key, err)
	}
	defer obj.Body.Close()

	return readMaybeGzip(obj.Body, "s3://"+s.Bucket+"/"+key, s.Options)
}

func normaliseEndpoint(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "https://" + endpoint
}
