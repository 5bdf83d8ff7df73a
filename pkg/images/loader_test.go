package images

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"htmlbox/pkg/css"
	"htmlbox/pkg/events"
	"htmlbox/pkg/graphics/graphicstest"
	"htmlbox/pkg/resource"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSource serves "WxH" bodies named by the last path element of the
// URL. With a gate, every fetch blocks until the gate closes.
type fakeSource struct {
	gate   chan struct{}
	err    error
	calls  atomic.Int32
	active atomic.Int32
	peak   atomic.Int32
}

func (s *fakeSource) Resolve(ref string) string { return ref }

func (s *fakeSource) Fetch(ctx context.Context, uri string) (*resource.Resource, error) {
	s.calls.Add(1)
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &resource.Resource{URL: uri, Body: []byte(path.Base(uri))}, nil
}

func wait(t *testing.T, p *Pending) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r, err := p.Wait(ctx)
	require.NoError(t, err)
	return r
}

func TestDownloaderDecodesImage(t *testing.T) {
	d := NewDownloader(&fakeSource{}, graphicstest.NewBackend(), 2, nil)
	defer d.Close()

	r := wait(t, d.Load("img/4x3"))
	require.NoError(t, r.Err)
	assert.Equal(t, 4, r.Image.Width())
	assert.Equal(t, 3, r.Image.Height())
}

func TestDuplicateRequestsShareOneDownload(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	d := NewDownloader(src, graphicstest.NewBackend(), 2, nil)
	defer d.Close()

	first := d.Load("img/2x2")
	second := d.Load("img/2x2")
	assert.Same(t, first, second)

	var wg sync.WaitGroup
	var fired atomic.Int32
	wg.Add(2)
	for _, p := range []*Pending{first, second} {
		p.OnDone(func(r Result) {
			assert.NoError(t, r.Err)
			fired.Add(1)
			wg.Done()
		})
	}
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(2), fired.Load())
	assert.Equal(t, int32(1), src.calls.Load())

	again := d.Load("img/2x2")
	assert.True(t, again.Ready(), "decoded images are cached")
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestFailureIsSharedAndRetried(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{gate: make(chan struct{}), err: boom}
	d := NewDownloader(src, graphicstest.NewBackend(), 1, nil)
	defer d.Close()

	first := d.Load("img/1x1")
	second := d.Load("img/1x1")
	close(src.gate)

	assert.ErrorIs(t, wait(t, first).Err, boom)
	assert.ErrorIs(t, wait(t, second).Err, boom)
	assert.Equal(t, int32(1), src.calls.Load())

	assert.ErrorIs(t, wait(t, d.Load("img/1x1")).Err, boom)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestDecodeFailure(t *testing.T) {
	d := NewDownloader(&fakeSource{}, graphicstest.NewBackend(), 1, nil)
	defer d.Close()

	r := wait(t, d.Load("img/not-an-image"))
	assert.Error(t, r.Err)
	assert.Nil(t, r.Image)
}

func TestConcurrencyIsBounded(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	d := NewDownloader(src, graphicstest.NewBackend(), 2, nil)
	defer d.Close()

	var pending []*Pending
	for _, name := range []string{"a/1x1", "b/1x1", "c/1x1", "d/1x1", "e/1x1", "f/1x1"} {
		pending = append(pending, d.Load(name))
	}
	require.Eventually(t, func() bool { return src.active.Load() == 2 }, 5*time.Second, time.Millisecond)
	close(src.gate)
	for _, p := range pending {
		assert.NoError(t, wait(t, p).Err)
	}
	assert.Equal(t, int32(2), src.peak.Load())
	assert.Equal(t, int32(6), src.calls.Load())
}

func TestCloseCancelsDownloads(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	d := NewDownloader(src, graphicstest.NewBackend(), 1, nil)

	running := d.Load("a/1x1")
	queued := d.Load("b/1x1")
	d.Close()

	require.True(t, running.Ready())
	require.True(t, queued.Ready())
	assert.ErrorIs(t, running.Result().Err, context.Canceled)
	assert.ErrorIs(t, queued.Result().Err, context.Canceled)
	assert.ErrorIs(t, d.Load("c/1x1").Result().Err, ErrClosed)
}

func TestOnDoneAfterCompletionFiresImmediately(t *testing.T) {
	p := Resolved("x", Result{Err: errEmptySrc})
	var got Result
	p.OnDone(func(r Result) { got = r })
	assert.ErrorIs(t, got.Err, errEmptySrc)

	// a second completion is ignored
	p.complete(Result{})
	assert.ErrorIs(t, p.Result().Err, errEmptySrc)
}

func TestLoaderHandlerAnswersDirectly(t *testing.T) {
	src := &fakeSource{}
	d := NewDownloader(src, graphicstest.NewBackend(), 1, nil)
	defer d.Close()

	img := graphicstest.NewImage(8, 8)
	l := NewLoader(func(e *events.ImageLoadEvent) {
		assert.Equal(t, "sprite.png", e.Src)
		assert.Equal(t, "logo", e.Attributes["alt"])
		e.CallbackRect(img, css.RectF{X: 2, Y: 2, Width: 4, Height: 4})
	}, d)

	r := wait(t, l.Request(" sprite.png ", map[string]string{"alt": "logo"}))
	require.NoError(t, r.Err)
	assert.Same(t, img, r.Image)
	assert.Equal(t, css.RectF{X: 2, Y: 2, Width: 4, Height: 4}, r.Rect)
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestLoaderHandlerRedirects(t *testing.T) {
	src := &fakeSource{}
	d := NewDownloader(src, graphicstest.NewBackend(), 1, nil)
	defer d.Close()

	l := NewLoader(func(e *events.ImageLoadEvent) { e.CallbackPath("cdn/5x6") }, d)
	r := wait(t, l.Request("logo.png", nil))
	require.NoError(t, r.Err)
	assert.Equal(t, 5, r.Image.Width())
}

func TestLoaderHandlerAnswersLater(t *testing.T) {
	l := NewLoader(func(e *events.ImageLoadEvent) {
		e.SetHandled()
		go e.Callback(nil)
	}, nil)

	r := wait(t, l.Request("later.png", nil))
	assert.ErrorIs(t, r.Err, errHostFailure)
}

func TestLoaderFallsBackToDownloader(t *testing.T) {
	d := NewDownloader(&fakeSource{}, graphicstest.NewBackend(), 1, nil)
	defer d.Close()

	l := NewLoader(func(e *events.ImageLoadEvent) {}, d)
	r := wait(t, l.Request("img/3x2", nil))
	require.NoError(t, r.Err)
	assert.Equal(t, 2, r.Image.Height())

	assert.ErrorIs(t, l.Request("  ", nil).Result().Err, errEmptySrc)
	assert.ErrorIs(t, NewLoader(nil, nil).Request("x", nil).Result().Err, errNoDownload)
}
