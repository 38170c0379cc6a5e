// Package evidence inspects evidence documents: it detects PDF content,
// counts pages and caches results.
package evidence

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/h2non/filetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotPDF is returned for documents which do not carry PDF signature.
var ErrNotPDF = errors.New("not a PDF document")

// Metadata is what bundle needs to know about an evidence document.
type Metadata struct {
	PageCount int   `json:"page_count"`
	Size      int64 `json:"file_size"`
}

// headerSize is enough for filetype matchers.
const headerSize = 262

var configDir sync.Once

// Provider inspects evidence documents. Safe for concurrent use.
type Provider struct {
	log   *zap.Logger
	cache *Cache
	conf  *model.Configuration
	count func(rs io.ReadSeeker, conf *model.Configuration) (int, error)
}

// NewProvider returns provider, cache may be nil. In strict mode documents
// have to pass full PDF validation, otherwise minor defects are tolerated.
func NewProvider(cache *Cache, strict bool, log *zap.Logger) *Provider {
	// pdfcpu must not create its configuration directory in user profile
	configDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if strict {
		conf.ValidationMode = model.ValidationStrict
	}
	return &Provider{
		log:   log.Named("evidence"),
		cache: cache,
		conf:  conf,
		count: api.PageCount,
	}
}

// Inspect returns metadata of a PDF file on disk.
func (p *Provider) Inspect(path string) (Metadata, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Metadata{}, err
	}
	if !fi.Mode().IsRegular() {
		return Metadata{}, fmt.Errorf("%s is not a regular file", path)
	}

	key := fileKey(path, fi.Size(), fi.ModTime())
	if md, ok := p.cached(key); ok {
		return md, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()

	md, err := p.inspect(f, fi.Size())
	if err != nil {
		return Metadata{}, fmt.Errorf("%s: %w", path, err)
	}
	p.store(key, md)
	return md, nil
}

// InspectEntry returns metadata of a PDF packed into archive. Entry content
// is read into memory since page counting needs random access.
func (p *Provider) InspectEntry(archive, name string, zf *zip.File) (Metadata, error) {
	key := entryKey(archive, name, zf.UncompressedSize64, zf.CRC32)
	if md, ok := p.cached(key); ok {
		return md, nil
	}

	r, err := zf.Open()
	if err != nil {
		return Metadata{}, fmt.Errorf("%s!%s: %w", archive, name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return Metadata{}, fmt.Errorf("%s!%s: %w", archive, name, err)
	}
	md, err := p.inspect(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Metadata{}, fmt.Errorf("%s!%s: %w", archive, name, err)
	}
	p.store(key, md)
	return md, nil
}

func (p *Provider) inspect(rs io.ReadSeeker, size int64) (Metadata, error) {
	head := make([]byte, headerSize)
	n, err := io.ReadFull(rs, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Metadata{}, err
	}
	if !filetype.Is(head[:n], "pdf") {
		return Metadata{}, ErrNotPDF
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Metadata{}, err
	}

	// page counting records current command in configuration
	conf := *p.conf
	pages, err := p.count(rs, &conf)
	if err != nil {
		return Metadata{}, fmt.Errorf("unable to count pages: %w", err)
	}
	if pages < 1 {
		return Metadata{}, fmt.Errorf("document has no pages")
	}
	return Metadata{PageCount: pages, Size: size}, nil
}

func (p *Provider) cached(key []byte) (Metadata, bool) {
	if p.cache == nil {
		return Metadata{}, false
	}
	md, ok := p.cache.Get(key)
	if ok {
		p.log.Debug("Cache hit", zap.ByteString("key", key))
	}
	return md, ok
}

func (p *Provider) store(key []byte, md Metadata) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Put(key, md); err != nil {
		p.log.Warn("Unable to cache evidence metadata", zap.Error(err))
	}
}

// Result is the outcome of inspection of a single file.
type Result struct {
	Path string
	Metadata
	Err error
}

// Resolve inspects files concurrently using at most workers goroutines.
// Results are parallel to paths.
func (p *Provider) Resolve(ctx context.Context, paths []string, workers int) []Result {
	out := make([]Result, len(paths))

	var g errgroup.Group
	g.SetLimit(max(1, workers))
	for i, path := range paths {
		out[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Metadata, out[i].Err = p.Inspect(path)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ResolveAll is Resolve for callers which only need metadata. Failed
// positions are left zero and all failures are combined into returned error.
func (p *Provider) ResolveAll(ctx context.Context, paths []string, workers int) ([]Metadata, error) {
	var err error
	out := make([]Metadata, len(paths))
	for i, r := range p.Resolve(ctx, paths, workers) {
		out[i] = r.Metadata
		err = multierr.Append(err, r.Err)
	}
	if err != nil {
		p.log.Debug("Evidence resolution finished with errors", zap.Int("failed", len(multierr.Errors(err))), zap.Int("total", len(paths)))
	}
	return out, err
}
