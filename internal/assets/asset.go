package assets

import (
	"context"       // Request scoped uploads
	"os"            // Reading local files
	"path/filepath" // File names

	"expense_tracker/internal/domain" // Error kinds
)

// Kind tags the variant held by an Asset.
type Kind int

const (
	KindNone   Kind = iota // no image
	KindRemote             // already hosted, passed through
	KindLocal              // pending upload from bytes or a local file
)

// Asset is an image reference: Remote(url) | Local(path or bytes) | None.
// The zero value is None.
type Asset struct {
	kind        Kind
	url         string
	path        string
	data        []byte
	name        string
	contentType string
}

// None returns the empty asset.
func None() Asset { return Asset{} }

// Remote references an image that is already hosted.
func Remote(url string) Asset {
	if url == "" {
		return None()
	}
	return Asset{kind: KindRemote, url: url}
}

// LocalFile references a file on disk that still has to be uploaded.
func LocalFile(path string, contentType string) Asset {
	return Asset{kind: KindLocal, path: path, name: filepath.Base(path), contentType: contentType}
}

// LocalBytes references in-memory content that still has to be uploaded.
func LocalBytes(name string, contentType string, data []byte) Asset {
	return Asset{kind: KindLocal, data: data, name: name, contentType: contentType}
}

func (a Asset) Kind() Kind     { return a.kind }
func (a Asset) URL() string    { return a.url }
func (a Asset) IsNone() bool   { return a.kind == KindNone }
func (a Asset) IsLocal() bool  { return a.kind == KindLocal }
func (a Asset) IsRemote() bool { return a.kind == KindRemote }

// Upload is a single file handed to a Host.
type Upload struct {
	Data        []byte
	Name        string
	ContentType string
	Path        string // destination, e.g. transactions/<walletId>/<unixMillis>
}

// Host stores uploaded files and returns their public URL.
type Host interface {
	Upload(ctx context.Context, upload Upload) (string, error)
}

// Resolve turns an asset into the URL to persist. None yields nil, Remote
// passes through, Local is uploaded to path on host.
func Resolve(ctx context.Context, host Host, asset Asset, path string) (*string, error) {
	switch asset.kind {
	case KindNone:
		return nil, nil // Nothing to store
	case KindRemote:
		url := asset.url
		return &url, nil // Already hosted, no upload
	}
	if host == nil {
		return nil, domain.NewError(domain.ErrUpload, "assets.resolve", "no image host configured", nil)
	}
	data := asset.data // In-memory content wins over a path
	if data == nil {
		raw, err := os.ReadFile(asset.path)
		if err != nil {
			return nil, domain.NewError(domain.ErrUpload, "assets.resolve", "could not read image", err)
		}
		data = raw
	}
	if len(data) == 0 {
		return nil, domain.NewError(domain.ErrUpload, "assets.resolve", "image is empty", nil)
	}
	// Hand the bytes to the image host
	url, err := host.Upload(ctx, Upload{Data: data, Name: asset.name, ContentType: asset.contentType, Path: path})
	if err != nil {
		return nil, err
	}
	return &url, nil
}
