// Package s3 provides an S3-compatible implementation of
// shelfkit.ObjectStore. S3 namespaces are flat, so there is no atomic rename
// capability; relocations go through the verified copy-then-delete path.
package s3

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/tags"

	"github.com/gobeaver/shelfkit"
)

// Store is an S3-backed shelfkit.ObjectStore.
type Store struct {
	api    *minio.Client
	bucket string
}

// Config holds connection settings for an S3-compatible endpoint.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// New creates an S3 store.
func New(cfg Config) (*Store, error) {
	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return &Store{api: api, bucket: cfg.Bucket}, nil
}

// List implements shelfkit.ObjectLister
func (s *Store) List(ctx context.Context, prefix string, fn func(shelfkit.ObjectInfo) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel() // stops the listing goroutine on early exit

	for obj := range s.api.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return mapError("list", prefix, obj.Err)
		}
		err := fn(shelfkit.ObjectInfo{
			Name:         obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
		if err != nil {
			if errors.Is(err, shelfkit.ErrStopList) {
				return nil
			}
			return err
		}
	}
	return nil
}

// ReadPrefix implements shelfkit.ObjectStore using a ranged read.
func (s *Store) ReadPrefix(ctx context.Context, name string, maxBytes int64) ([]byte, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(0, maxBytes-1); err != nil {
		return nil, shelfkit.NewPathError("read-prefix", name, err)
	}

	obj, err := s.api.GetObject(ctx, s.bucket, name, opts)
	if err != nil {
		return nil, mapError("read-prefix", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, mapError("read-prefix", name, err)
	}
	return data, nil
}

// GetTags implements shelfkit.ObjectTagger
func (s *Store) GetTags(ctx context.Context, name string) (map[string]string, error) {
	t, err := s.api.GetObjectTagging(ctx, s.bucket, name, minio.GetObjectTaggingOptions{})
	if err != nil {
		return nil, mapError("get-tags", name, err)
	}
	return t.ToMap(), nil
}

// SetTags implements shelfkit.ObjectTagger
func (s *Store) SetTags(ctx context.Context, name string, kv map[string]string) error {
	t, err := tags.MapToObjectTags(kv)
	if err != nil {
		return shelfkit.NewPathError("set-tags", name, err)
	}
	if err := s.api.PutObjectTagging(ctx, s.bucket, name, t, minio.PutObjectTaggingOptions{}); err != nil {
		return mapError("set-tags", name, err)
	}
	return nil
}

// Copy implements shelfkit.ObjectStore. CopyObject is synchronous: when it
// returns without error the destination is complete.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	_, err := s.api.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: dst},
		minio.CopySrcOptions{Bucket: s.bucket, Object: src},
	)
	if err != nil {
		return mapError("copy", src, err)
	}
	return nil
}

// Delete implements shelfkit.ObjectStore
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.api.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return mapError("delete", name, err)
	}
	return nil
}

// Checksum implements shelfkit.ObjectStore by streaming the object through a
// hasher.
func (s *Store) Checksum(ctx context.Context, name string, algorithm shelfkit.ChecksumAlgorithm) (string, error) {
	obj, err := s.api.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return "", mapError("checksum", name, err)
	}
	defer obj.Close()

	sum, err := shelfkit.CalculateChecksum(obj, algorithm)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code != "" {
			return "", mapError("checksum", name, err)
		}
		return "", shelfkit.NewPathError("checksum", name, err)
	}
	return sum, nil
}

// AccountCapabilities implements shelfkit.CanProbe. S3 object keys are a
// flat namespace; there is nothing to rename atomically.
func (s *Store) AccountCapabilities(ctx context.Context) (shelfkit.Capabilities, error) {
	return shelfkit.Capabilities{SupportsAtomicRename: false}, nil
}

// mapError maps minio errors to shelfkit errors
func mapError(op, path string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound:
		return shelfkit.NewPathError(op, path, shelfkit.ErrNotExist)
	case resp.StatusCode == http.StatusConflict:
		return shelfkit.NewPathError(op, path, shelfkit.ErrExist)
	}
	return shelfkit.NewPathError(op, path, err)
}

// Ensure Store implements required and optional interfaces
var (
	_ shelfkit.ObjectStore = (*Store)(nil)
	_ shelfkit.CanProbe    = (*Store)(nil)
)
