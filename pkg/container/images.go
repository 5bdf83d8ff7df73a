package container

import (
	"context"

	"htmlbox/pkg/events"
	"htmlbox/pkg/html"
	"htmlbox/pkg/images"
)

type pendingImage struct {
	box        *html.Box
	background bool
	future     *images.Pending
}

// requestImages starts the loads of every <img> source and background
// image in the tree.
func (c *Container) requestImages(root *html.Box) {
	root.Walk(func(b *html.Box) bool {
		if b.IsImage() {
			src, _ := b.Attr("src")
			c.request(b, src, false)
		}
		if bg := b.Style("background-image"); bg != "" && bg != "none" {
			c.request(b, bg, true)
		}
		return true
	})
}

func (c *Container) request(b *html.Box, src string, background bool) {
	var attrs map[string]string
	if b.Tag != nil {
		attrs = b.Tag.Attrs.Map()
	}
	p := c.loader.Request(src, attrs)
	c.pending = append(c.pending, pendingImage{box: b, background: background, future: p})
	p.OnDone(func(images.Result) { c.signal() })
}

// ApplyPending assigns finished image loads to their boxes and reports
// whether any box changed. It is the only place image results enter the
// tree; call it from the goroutine that lays out and paints.
func (c *Container) ApplyPending() bool {
	if c.disposed.Load() {
		return false
	}
	changed := false
	kept := c.pending[:0]
	for _, pi := range c.pending {
		if !pi.future.Ready() {
			kept = append(kept, pi)
			continue
		}
		changed = true
		r := pi.future.Result()
		switch {
		case r.Err != nil:
			c.ReportError(events.Image, "Failed to load image "+pi.future.URL, r.Err)
			if !pi.background {
				pi.box.ImageError = true
			}
		case pi.background:
			pi.box.BackgroundImage = r.Image
		default:
			pi.box.Image = r.Image
			pi.box.ImageRect = r.Rect
			pi.box.ImageError = false
		}
	}
	clear(c.pending[len(kept):])
	c.pending = kept
	return changed
}

// PendingImages returns the number of loads not yet applied.
func (c *Container) PendingImages() int { return len(c.pending) }

// WaitForImages blocks until every load started so far finished or ctx
// ends, then applies them.
func (c *Container) WaitForImages(ctx context.Context) error {
	for _, pi := range c.pending {
		if _, err := pi.future.Wait(ctx); err != nil {
			return err
		}
	}
	c.ApplyPending()
	return nil
}
