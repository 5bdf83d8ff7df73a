package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"htmlbox/pkg/graphics"
	"htmlbox/pkg/resource"
)

// ErrClosed is returned for loads requested after Close.
var ErrClosed = errors.New("image downloader closed")

// Source resolves and fetches image bytes. *resource.Fetcher implements it.
type Source interface {
	Resolve(ref string) string
	Fetch(ctx context.Context, uri string) (*resource.Resource, error)
}

// Decoder turns image bytes into a drawable image. *graphics.Adapter
// implements it.
type Decoder interface {
	ImageFromStream(r io.Reader) (graphics.Image, error)
}

// Downloader fetches and decodes images on a bounded pool. Concurrent
// requests for the same URL share one download; decoded images are cached
// by URL, failures are not.
type Downloader struct {
	src    Source
	dec    Decoder
	sem    *semaphore.Weighted
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	inflight map[string]*Pending
	cache    map[string]graphics.Image
}

// NewDownloader creates a downloader running at most maxConcurrent fetches
// at a time (4 when maxConcurrent < 1).
func NewDownloader(src Source, dec Decoder, maxConcurrent int, logger *zap.Logger) *Downloader {
	if maxConcurrent < 1 {
		maxConcurrent = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Downloader{
		src:      src,
		dec:      dec,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		logger:   logger.Named("images"),
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[string]*Pending),
		cache:    make(map[string]graphics.Image),
	}
}

// Load starts loading uri, or joins the download already in flight for it.
func (d *Downloader) Load(uri string) *Pending {
	key := d.src.Resolve(uri)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Resolved(key, Result{Err: ErrClosed})
	}
	if img, ok := d.cache[key]; ok {
		return Resolved(key, Result{Image: img})
	}
	if p, ok := d.inflight[key]; ok {
		return p
	}
	p := newPending(key)
	d.inflight[key] = p
	d.wg.Add(1)
	go d.run(key, p)
	return p
}

func (d *Downloader) run(key string, p *Pending) {
	defer d.wg.Done()
	r := d.download(key)

	d.mu.Lock()
	delete(d.inflight, key)
	if r.Err == nil {
		d.cache[key] = r.Image
	}
	d.mu.Unlock()

	p.complete(r)
}

func (d *Downloader) download(key string) Result {
	if err := d.sem.Acquire(d.ctx, 1); err != nil {
		return Result{Err: fmt.Errorf("loading %s: %w", key, err)}
	}
	defer d.sem.Release(1)

	start := time.Now()
	res, err := d.src.Fetch(d.ctx, key)
	if err != nil {
		d.logger.Debug("image fetch failed", zap.String("url", key), zap.Error(err))
		return Result{Err: err}
	}
	img, err := d.dec.ImageFromStream(bytes.NewReader(res.Body))
	if err != nil {
		d.logger.Debug("image decode failed", zap.String("url", key), zap.Error(err))
		return Result{Err: fmt.Errorf("decoding %s: %w", key, err)}
	}
	d.logger.Debug("image loaded",
		zap.String("url", key),
		zap.Int("width", img.Width()),
		zap.Int("height", img.Height()),
		zap.Duration("elapsed", time.Since(start)))
	return Result{Image: img}
}

// Close cancels outstanding downloads and waits for their futures to
// complete.
func (d *Downloader) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cancel()
	d.wg.Wait()
}
