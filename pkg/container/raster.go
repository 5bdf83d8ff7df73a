package container

import (
	"math"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics/ggbackend"
)

// RenderImage lays the document out for width and paints it on a new
// raster surface filled with background. A height of 0 takes the document
// height.
func (c *Container) RenderImage(width, height int, background css.Color) *ggbackend.Surface {
	docHeight := c.Layout(float64(width))
	if height <= 0 {
		height = int(math.Ceil(docHeight))
	}
	width, height = max(width, 1), max(height, 1)

	s := ggbackend.NewSurface(width, height)
	s.Clear(background)
	c.Paint(s, css.RectF{Width: float64(width), Height: float64(height)})
	return s
}
