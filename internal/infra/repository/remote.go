// Where: cli/internal/infra/repository/remote.go
// What: Remote repository transports (http, s3, file).
// Why: Download artifacts and metadata from wherever the build configures them.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by a Remote that does not hold the requested path.
var ErrNotFound = errors.New("not found")

// Remote fetches repository paths from one remote repository.
type Remote interface {
	ID() string
	Fetch(ctx context.Context, relPath string) (io.ReadCloser, error)
}

// RemoteSpec configures a remote repository.
type RemoteSpec struct {
	ID  string
	URL string
	// Endpoint overrides the S3 endpoint for s3:// repositories.
	Endpoint string
}

// NewRemote builds the transport matching the URL scheme of spec.
func NewRemote(ctx context.Context, spec RemoteSpec, factory ClientFactory, client *http.Client) (Remote, error) {
	id := strings.TrimSpace(spec.ID)
	parsed, err := url.Parse(strings.TrimSpace(spec.URL))
	if err != nil {
		return nil, fmt.Errorf("repository %s: %w", id, err)
	}
	if id == "" {
		id = parsed.Host
	}
	switch parsed.Scheme {
	case "http", "https":
		if client == nil {
			client = http.DefaultClient
		}
		return httpRemote{id: id, base: strings.TrimSuffix(parsed.String(), "/"), client: client}, nil
	case "s3":
		if parsed.Host == "" {
			return nil, fmt.Errorf("repository %s: bucket is required", id)
		}
		if factory == nil {
			factory = AWSClientFactory()
		}
		api, err := factory.S3(ctx, strings.TrimSpace(spec.Endpoint))
		if err != nil {
			return nil, fmt.Errorf("repository %s: %w", id, err)
		}
		return s3Remote{id: id, bucket: parsed.Host, prefix: strings.Trim(parsed.Path, "/"), client: api}, nil
	case "file":
		return fileRemote{id: id, root: filepath.FromSlash(parsed.Path)}, nil
	default:
		return nil, fmt.Errorf("repository %s: unsupported url scheme %q", id, parsed.Scheme)
	}
}

type httpRemote struct {
	id     string
	base   string
	client *http.Client
}

func (r httpRemote) ID() string {
	return r.id
}

func (r httpRemote) Fetch(ctx context.Context, relPath string) (io.ReadCloser, error) {
	target := r.base + "/" + strings.TrimPrefix(relPath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", target, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", target, resp.Status)
	}
	return resp.Body, nil
}

type s3Remote struct {
	id     string
	bucket string
	prefix string
	client S3API
}

func (r s3Remote) ID() string {
	return r.id
}

func (r s3Remote) Fetch(ctx context.Context, relPath string) (io.ReadCloser, error) {
	key := strings.TrimPrefix(relPath, "/")
	if r.prefix != "" {
		key = path.Join(r.prefix, key)
	}
	body, err := r.client.GetObject(ctx, r.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", r.bucket, key, err)
	}
	return body, nil
}

type fileRemote struct {
	id   string
	root string
}

func (r fileRemote) ID() string {
	return r.id
}

func (r fileRemote) Fetch(_ context.Context, relPath string) (io.ReadCloser, error) {
	target := filepath.Join(r.root, filepath.FromSlash(relPath))
	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", target, ErrNotFound)
		}
		return nil, err
	}
	return file, nil
}
