// Package storage fetches corpus directories from S3-compatible object
// storage so workers can run against corpora uploaded by the graph
// construction pipeline.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"saladgen/internal/util"
	"saladgen/pkg/logger"
)

func NewS3Client(ctx context.Context) *s3.Client {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client
}

// GetFile downloads one object from the configured bucket.
func GetFile(ctx context.Context, client *s3.Client, key string) ([]byte, error) {
	bucket := util.GetEnv("AWS_BUCKET")
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get file from S3: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}

	return buf.Bytes(), nil
}

// ListCorpora returns the corpus names available under the given root
// prefix, one per common prefix in the bucket.
func ListCorpora(ctx context.Context, client *s3.Client, root string) ([]string, error) {
	bucket := util.GetEnv("AWS_BUCKET")
	if root != "" {
		root = strings.TrimSuffix(root, "/") + "/"
	}

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(root),
		Delimiter: aws.String("/"),
	})

	corpora := []string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list corpora: %w", err)
		}
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), root), "/")
			if name != "" {
				corpora = append(corpora, name)
			}
		}
	}

	return corpora, nil
}

// DownloadCorpus mirrors every object under the given prefix into a
// local directory, preserving relative paths. It returns the local
// corpus root ready for index loading.
func DownloadCorpus(ctx context.Context, client *s3.Client, prefix, destDir string) (string, error) {
	bucket := util.GetEnv("AWS_BUCKET")
	prefix = strings.TrimSuffix(prefix, "/") + "/"

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	files := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list corpus objects: %w", err)
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			rel := strings.TrimPrefix(key, prefix)
			if rel == "" || strings.HasSuffix(rel, "/") {
				continue
			}

			var data []byte
			err := util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
				var err error
				data, err = GetFile(ctx, client, key)
				return err
			})
			if err != nil {
				return "", err
			}

			path := filepath.Join(destDir, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return "", fmt.Errorf("failed to create corpus folder: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return "", fmt.Errorf("failed to write corpus file %s: %w", rel, err)
			}
			files++
		}
	}

	if files == 0 {
		return "", fmt.Errorf("no corpus objects found under prefix %s", prefix)
	}

	logger.Info("[Storage] Corpus downloaded", "prefix", prefix, "files", files)
	return destDir, nil
}
