// Package azure provides an Azure Blob Storage implementation of
// shelfkit.ObjectStore. On storage accounts with a hierarchical namespace
// (ADLS Gen2) it also offers atomic, metadata-preserving renames through the
// Data Lake endpoint.
package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/datalakeerror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/filesystem"

	"github.com/gobeaver/shelfkit"
)

// copyPollInterval bounds how often an in-flight server-side copy is polled
// for completion. Copies within one account usually finish immediately.
const (
	copyPollInitial = 200 * time.Millisecond
	copyPollMax     = 2 * time.Second
)

// Store is an Azure-backed shelfkit.ObjectStore.
type Store struct {
	client    *azblob.Client
	fs        *filesystem.Client // nil when the dfs endpoint is unavailable
	container string
}

// NewFromConnectionString creates a store from a storage account connection
// string. The Data Lake filesystem client is best-effort: if it cannot be
// constructed the store still works, without the rename capability.
func NewFromConnectionString(connectionString, containerName string) (*Store, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}

	fs, err := filesystem.NewClientFromConnectionString(connectionString, containerName, nil)
	if err != nil {
		fs = nil
	}

	return &Store{client: client, fs: fs, container: containerName}, nil
}

// NewWithCredential creates a store from a blob endpoint URL (e.g.
// https://acct.blob.core.windows.net) and a token credential. The dfs
// endpoint is derived from the blob one.
func NewWithCredential(accountURL, containerName string, cred azcore.TokenCredential) (*Store, error) {
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}

	var fs *filesystem.Client
	dfsURL := strings.Replace(accountURL, ".blob.", ".dfs.", 1)
	if dfsURL != accountURL {
		fsURL := strings.TrimSuffix(dfsURL, "/") + "/" + containerName
		if c, err := filesystem.NewClient(fsURL, cred, nil); err == nil {
			fs = c
		}
	}

	return &Store{client: client, fs: fs, container: containerName}, nil
}

func (s *Store) blobClient(name string) *blob.Client {
	return s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(name)
}

// List implements shelfkit.ObjectLister using the flat listing pager.
func (s *Store) List(ctx context.Context, prefix string, fn func(shelfkit.ObjectInfo) error) error {
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return mapError("list", prefix, err)
		}

		for _, item := range resp.Segment.BlobItems {
			if item.Name == nil {
				continue
			}

			info := shelfkit.ObjectInfo{Name: *item.Name}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					info.Size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					info.LastModified = *item.Properties.LastModified
				}
			}

			if err := fn(info); err != nil {
				if errors.Is(err, shelfkit.ErrStopList) {
					return nil
				}
				return err
			}
		}
	}
	return nil
}

// ReadPrefix implements shelfkit.ObjectStore using a ranged download.
func (s *Store) ReadPrefix(ctx context.Context, name string, maxBytes int64) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, name, &azblob.DownloadStreamOptions{
		Range: blob.HTTPRange{Offset: 0, Count: maxBytes},
	})
	if err != nil {
		return nil, mapError("read-prefix", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, shelfkit.NewPathError("read-prefix", name, err)
	}
	return data, nil
}

// GetTags implements shelfkit.ObjectTagger using blob index tags.
func (s *Store) GetTags(ctx context.Context, name string) (map[string]string, error) {
	resp, err := s.blobClient(name).GetTags(ctx, nil)
	if err != nil {
		return nil, mapError("get-tags", name, err)
	}

	tags := make(map[string]string, len(resp.BlobTagSet))
	for _, t := range resp.BlobTagSet {
		if t.Key != nil && t.Value != nil {
			tags[*t.Key] = *t.Value
		}
	}
	return tags, nil
}

// SetTags implements shelfkit.ObjectTagger
func (s *Store) SetTags(ctx context.Context, name string, tags map[string]string) error {
	if _, err := s.blobClient(name).SetTags(ctx, tags, nil); err != nil {
		return mapError("set-tags", name, err)
	}
	return nil
}

// Copy implements shelfkit.ObjectStore with StartCopyFromURL. Azure's
// server-side copy is asynchronous: the call returns before the bytes have
// landed, so the destination is polled until the copy leaves the pending
// state. Returning earlier would let a verification checksum read a
// truncated object.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	srcURL := s.blobClient(src).URL()
	dstClient := s.blobClient(dst)

	if _, err := dstClient.StartCopyFromURL(ctx, srcURL, nil); err != nil {
		return mapError("copy", src, err)
	}

	interval := copyPollInitial
	for {
		props, err := dstClient.GetProperties(ctx, nil)
		if err != nil {
			return mapError("copy", dst, err)
		}
		if props.CopyStatus == nil || *props.CopyStatus == blob.CopyStatusTypeSuccess {
			return nil
		}
		switch *props.CopyStatus {
		case blob.CopyStatusTypeAborted, blob.CopyStatusTypeFailed:
			status := string(*props.CopyStatus)
			if props.CopyStatusDescription != nil {
				status += ": " + *props.CopyStatusDescription
			}
			return shelfkit.NewPathError("copy", dst, fmt.Errorf("server-side copy %s", status))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		if interval *= 2; interval > copyPollMax {
			interval = copyPollMax
		}
	}
}

// Delete implements shelfkit.ObjectStore
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.client.DeleteBlob(ctx, s.container, name, nil); err != nil {
		return mapError("delete", name, err)
	}
	return nil
}

// Checksum implements shelfkit.ObjectStore by streaming the blob through a
// hasher. The content-MD5 property is not trusted: it is optional and
// client-reported.
func (s *Store) Checksum(ctx context.Context, name string, algorithm shelfkit.ChecksumAlgorithm) (string, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		return "", mapError("checksum", name, err)
	}
	defer resp.Body.Close()

	sum, err := shelfkit.CalculateChecksum(resp.Body, algorithm)
	if err != nil {
		return "", shelfkit.NewPathError("checksum", name, err)
	}
	return sum, nil
}

// AccountCapabilities implements shelfkit.CanProbe by asking the account
// whether its namespace is hierarchical. Rename additionally needs the dfs
// endpoint client.
func (s *Store) AccountCapabilities(ctx context.Context) (shelfkit.Capabilities, error) {
	resp, err := s.client.ServiceClient().GetAccountInfo(ctx, nil)
	if err != nil {
		return shelfkit.Capabilities{}, mapError("account-info", s.container, err)
	}

	hns := resp.IsHierarchicalNamespaceEnabled != nil && *resp.IsHierarchicalNamespaceEnabled
	return shelfkit.Capabilities{SupportsAtomicRename: hns && s.fs != nil}, nil
}

// Rename implements shelfkit.CanRename through the Data Lake endpoint.
func (s *Store) Rename(ctx context.Context, src, dst string, overwrite bool) error {
	if s.fs == nil {
		return shelfkit.NewPathError("rename", src, shelfkit.ErrNotSupported)
	}

	if !overwrite {
		_, err := s.blobClient(dst).GetProperties(ctx, nil)
		if err == nil {
			return shelfkit.NewPathError("rename", dst, shelfkit.ErrExist)
		}
		if !bloberror.HasCode(err, bloberror.BlobNotFound) {
			return mapError("rename", dst, err)
		}
	}

	if _, err := s.fs.NewFileClient(src).Rename(ctx, dst, nil); err != nil {
		return mapError("rename", src, err)
	}
	return nil
}

// CreateDir implements shelfkit.CanRename. A directory that already exists
// is success, not failure.
func (s *Store) CreateDir(ctx context.Context, path string) error {
	if s.fs == nil {
		return shelfkit.NewPathError("create-dir", path, shelfkit.ErrNotSupported)
	}

	if _, err := s.fs.NewDirectoryClient(path).Create(ctx, nil); err != nil {
		if datalakeerror.HasCode(err, datalakeerror.PathAlreadyExists) {
			return nil
		}
		return mapError("create-dir", path, err)
	}
	return nil
}

// mapError maps Azure SDK errors to shelfkit errors
func mapError(op, path string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return shelfkit.NewPathError(op, path, shelfkit.ErrNotExist)
	}
	if datalakeerror.HasCode(err, datalakeerror.PathNotFound) {
		return shelfkit.NewPathError(op, path, shelfkit.ErrNotExist)
	}
	if bloberror.HasCode(err, bloberror.BlobAlreadyExists) || datalakeerror.HasCode(err, datalakeerror.PathAlreadyExists) {
		return shelfkit.NewPathError(op, path, shelfkit.ErrExist)
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return shelfkit.NewPathError(op, path, shelfkit.ErrNotExist)
		case http.StatusConflict:
			return shelfkit.NewPathError(op, path, shelfkit.ErrExist)
		}
	}

	return shelfkit.NewPathError(op, path, err)
}

// Ensure Store implements required and optional interfaces
var (
	_ shelfkit.ObjectStore = (*Store)(nil)
	_ shelfkit.CanProbe    = (*Store)(nil)
	_ shelfkit.CanRename   = (*Store)(nil)
)
