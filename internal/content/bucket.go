package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/synaptiq/synapse-backend/internal/logger"
)

// BucketStore serves content from a GCS bucket, mirroring the directory
// semantics of DirStore via prefix+delimiter listings.
type BucketStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	prefix string
}

func NewBucketStore(log *logger.Logger) (*BucketStore, error) {
	storeLog := log.With("store", "BucketStore")

	bucket := os.Getenv("CONTENT_BUCKET_NAME")
	if bucket == "" {
		return nil, fmt.Errorf("missing env var CONTENT_BUCKET_NAME")
	}
	prefix := strings.Trim(os.Getenv("CONTENT_BUCKET_PREFIX"), "/")

	ctx := context.Background()
	saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")
	var client *storage.Client
	var err error
	if saPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(storage.ScopeReadOnly))
	} else {
		client, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadOnly))
	}
	if err != nil {
		return nil, fmt.Errorf("Failed to create storage client: %w", err)
	}

	return &BucketStore{log: storeLog, client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *BucketStore) objectPath(rel string) string {
	rel = strings.Trim(rel, "/")
	if s.prefix == "" {
		return rel
	}
	if rel == "" {
		return s.prefix
	}
	return s.prefix + "/" + rel
}

func (s *BucketStore) List(ctx context.Context, dir string) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	listPrefix := s.objectPath(dir)
	if listPrefix != "" {
		listPrefix += "/"
	}

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{
		Prefix:    listPrefix,
		Delimiter: "/",
	})

	var results []Entry
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Failed to list bucket objects under %q: %w", listPrefix, err)
		}
		if attrs.Prefix != "" {
			name := strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, listPrefix), "/")
			results = append(results, Entry{Name: name, IsDir: true})
			continue
		}
		name := strings.TrimPrefix(attrs.Name, listPrefix)
		if name == "" {
			continue
		}
		results = append(results, Entry{Name: name})
	}
	return results, nil
}

func (s *BucketStore) Read(ctx context.Context, filePath string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reader, err := s.client.Bucket(s.bucket).Object(s.objectPath(filePath)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fs.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("Failed to open bucket object %q: %w", filePath, err)
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

var _ Store = (*BucketStore)(nil)
