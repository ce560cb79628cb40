package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/xbond-analytics/market-etl/workpool"
)

// ListedObject is one object returned by the Select phase, size included so
// the extractor can reject oversized files before downloading them (spec
// §4.4 phase 1: "files exceeding a configurable max size fail the
// extraction").
type ListedObject struct {
	Key  string
	Size int64
}

// Select lists every object under prefix, paginating through
// ListObjectsV2's continuation tokens.
func Select(ctx context.Context, client Client, bucket, prefix string) ([]ListedObject, error) {
	var out []ListedObject
	var token *string
	for {
		resp, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("objectstore: listing %s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range resp.Contents {
			if obj.Key == nil {
				continue
			}
			size := int64(0)
			if obj.Size != nil {
				size = *obj.Size
			}
			out = append(out, ListedObject{Key: *obj.Key, Size: size})
		}
		if resp.IsTruncated == nil || !*resp.IsTruncated || resp.NextContinuationToken == nil {
			break
		}
		token = resp.NextContinuationToken
	}
	return out, nil
}

// Download fetches every listed object into destDir concurrently (bounded by
// workpool, spec §4.4 phase 2: "fetch selected objects concurrently"),
// preserving each object's base name as the local file name. Any single
// download failure fails the whole call — "any download failure fails the
// extraction".
func Download(ctx context.Context, client Client, bucket, destDir string, objects []ListedObject, maxConcurrency int) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("objectstore: creating work dir %s: %w", destDir, err)
	}

	tasks := make([]workpool.Task[string], 0, len(objects))
	for _, obj := range objects {
		obj := obj
		tasks = append(tasks, func(taskCtx context.Context) (string, error) {
			return downloadOne(taskCtx, client, bucket, destDir, obj)
		})
	}

	results, err := workpool.RunFailFast(ctx, workpool.Bound(len(tasks), maxConcurrency), tasks)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.Value)
	}
	return paths, nil
}

func downloadOne(ctx context.Context, client Client, bucket, destDir string, obj ListedObject) (string, error) {
	resp, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(obj.Key)})
	if err != nil {
		return "", fmt.Errorf("objectstore: downloading %s: %w", obj.Key, err)
	}
	defer resp.Body.Close()

	localPath := filepath.Join(destDir, filepath.Base(obj.Key))
	f, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("objectstore: creating local file %s: %w", localPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("objectstore: writing local file %s: %w", localPath, err)
	}
	return localPath, nil
}
