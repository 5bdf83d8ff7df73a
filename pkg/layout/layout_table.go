package layout

import (
	"math"

	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
)

// TableCell is a cell placed in the table grid.
type TableCell struct {
	Box     *html.Box
	Row     int
	Col     int
	Colspan int
	Rowspan int
}

// TableRow is a row of the grid. Box is nil for the anonymous row that
// holds cells placed directly in a table or row group.
type TableRow struct {
	Box   *html.Box
	Group *html.Box
	Cells []*TableCell
}

// TableInfo is the grid of a table box.
type TableInfo struct {
	Rows     []*TableRow
	Groups   []*html.Box
	Captions []*html.Box
	Cols     int
	SpacingH float64
	SpacingV float64
}

const maxSpan = 1000

// buildTableInfo collects the rows of b in display order (header groups,
// body rows, footer groups) and places every cell in the grid.
func (e *Engine) buildTableInfo(b *html.Box) *TableInfo {
	info := &TableInfo{}
	info.SpacingH, info.SpacingV = borderSpacing(b)

	var headers, bodies, footers []*TableRow
	var anon *TableRow
	addCell := func(rows *[]*TableRow, group, cell *html.Box) {
		if anon == nil {
			anon = &TableRow{Group: group}
			*rows = append(*rows, anon)
		}
		anon.Cells = append(anon.Cells, &TableCell{Box: cell})
	}
	collectRows := func(rows *[]*TableRow, group *html.Box) {
		anon = nil
		for _, child := range group.Children {
			switch child.Display() {
			case css.DisplayNone:
			case css.DisplayTableRow:
				anon = nil
				*rows = append(*rows, rowOf(child, group))
			case css.DisplayTableCell:
				addCell(rows, group, child)
			}
		}
		anon = nil
	}

	for _, child := range b.Children {
		switch child.Display() {
		case css.DisplayNone, css.DisplayTableColumn, css.DisplayTableColumnGroup:
		case css.DisplayTableCaption:
			info.Captions = append(info.Captions, child)
			anon = nil
		case css.DisplayTableHeaderGroup:
			info.Groups = append(info.Groups, child)
			collectRows(&headers, child)
		case css.DisplayTableFooterGroup:
			info.Groups = append(info.Groups, child)
			collectRows(&footers, child)
		case css.DisplayTableRowGroup:
			info.Groups = append(info.Groups, child)
			collectRows(&bodies, child)
		case css.DisplayTableRow:
			anon = nil
			bodies = append(bodies, rowOf(child, nil))
		case css.DisplayTableCell:
			addCell(&bodies, nil, child)
		}
	}
	info.Rows = append(append(headers, bodies...), footers...)
	info.placeCells()
	return info
}

func rowOf(row, group *html.Box) *TableRow {
	r := &TableRow{Box: row, Group: group}
	for _, cell := range row.Children {
		if cell.Display() == css.DisplayTableCell {
			r.Cells = append(r.Cells, &TableCell{Box: cell})
		}
	}
	return r
}

// placeCells assigns grid positions, skipping slots taken by row spans of
// earlier rows.
func (t *TableInfo) placeCells() {
	var occupied [][]bool
	taken := func(r, c int) bool {
		return r < len(occupied) && c < len(occupied[r]) && occupied[r][c]
	}
	take := func(r, c int) {
		for len(occupied) <= r {
			occupied = append(occupied, nil)
		}
		for len(occupied[r]) <= c {
			occupied[r] = append(occupied[r], false)
		}
		occupied[r][c] = true
	}
	for ri, row := range t.Rows {
		col := 0
		for _, cell := range row.Cells {
			for taken(ri, col) {
				col++
			}
			cell.Row, cell.Col = ri, col
			cell.Colspan = spanAttr(cell.Box, "colspan")
			cell.Rowspan = spanAttr(cell.Box, "rowspan")
			if ri+cell.Rowspan > len(t.Rows) {
				cell.Rowspan = len(t.Rows) - ri
			}
			for r := ri; r < ri+cell.Rowspan; r++ {
				for c := col; c < col+cell.Colspan; c++ {
					take(r, c)
				}
			}
			col += cell.Colspan
			if col > t.Cols {
				t.Cols = col
			}
		}
	}
}

func spanAttr(b *html.Box, name string) int {
	n, ok := parseIntAttr(b, name)
	if !ok || n < 1 {
		return 1
	}
	if n > maxSpan {
		return maxSpan
	}
	return n
}

// borderSpacing parses border-spacing as one or two lengths. Collapsed
// borders have no spacing.
func borderSpacing(b *html.Box) (float64, float64) {
	if b.Style("border-collapse") == "collapse" {
		return 0, 0
	}
	parts := css.SplitValues(b.Style("border-spacing"))
	if len(parts) == 0 {
		return 0, 0
	}
	h, ok := css.ParseLength(parts[0], b.FontSize(), 0)
	if !ok || h < 0 {
		h = 0
	}
	v := h
	if len(parts) > 1 {
		if n, ok := css.ParseLength(parts[1], b.FontSize(), 0); ok && n >= 0 {
			v = n
		}
	}
	return h, v
}

func (c *TableCell) lastRow() int { return c.Row + c.Rowspan - 1 }

func (t *TableInfo) cells() []*TableCell {
	var out []*TableCell
	for _, row := range t.Rows {
		out = append(out, row.Cells...)
	}
	return out
}

// columnWidths returns per column min and max widths and the largest
// percentage width of a single-column cell.
func (e *Engine) columnWidths(t *TableInfo) (mins, maxs, pcts []float64) {
	mins = make([]float64, t.Cols)
	maxs = make([]float64, t.Cols)
	pcts = make([]float64, t.Cols)
	var spanning []*TableCell
	for _, cell := range t.cells() {
		if cell.Colspan > 1 {
			spanning = append(spanning, cell)
			continue
		}
		min, max := e.outerMinMax(cell.Box)
		mins[cell.Col] = math.Max(mins[cell.Col], min)
		maxs[cell.Col] = math.Max(maxs[cell.Col], math.Max(min, max))
		if w := cell.Box.Style("width"); css.IsPercentage(w) {
			if p, ok := css.ParseLength(w, 0, 100); ok {
				pcts[cell.Col] = math.Max(pcts[cell.Col], p)
			}
		}
	}
	for _, cell := range spanning {
		min, max := e.outerMinMax(cell.Box)
		spacing := t.SpacingH * float64(cell.Colspan-1)
		spread(mins[cell.Col:cell.Col+cell.Colspan], min-spacing)
		spread(maxs[cell.Col:cell.Col+cell.Colspan], math.Max(min, max)-spacing)
	}
	for i := range maxs {
		maxs[i] = math.Max(maxs[i], mins[i])
	}
	return mins, maxs, pcts
}

// spread grows cols evenly until they add up to at least need.
func spread(cols []float64, need float64) {
	have := sum(cols)
	if need <= have {
		return
	}
	extra := (need - have) / float64(len(cols))
	for i := range cols {
		cols[i] += extra
	}
}

func sum(v []float64) float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	return total
}

// tableMinMax returns the intrinsic content widths of the table b.
func (e *Engine) tableMinMax(b *html.Box) (float64, float64) {
	t := e.buildTableInfo(b)
	mins, maxs, _ := e.columnWidths(t)
	spacing := t.SpacingH * float64(t.Cols+1)
	if t.Cols == 0 {
		spacing = 0
	}
	min, max := sum(mins)+spacing, sum(maxs)+spacing
	for _, c := range t.Captions {
		cmin, _ := e.outerMinMax(c)
		min = math.Max(min, cmin)
		max = math.Max(max, cmin)
	}
	if w, auto := e.specifiedWidth(b, 0); !auto && !css.IsPercentage(b.Style("width")) {
		min = math.Max(min, w)
		max = math.Max(min, w)
	}
	return min, max
}

// distribute picks the final width of every column for a grid content
// width of target. Percentage columns are served first; the rest share what
// is left between their min and max widths, or grow past max when a fixed
// table width leaves room.
func distribute(mins, maxs, pcts []float64, target float64) []float64 {
	widths := make([]float64, len(mins))
	remaining := target
	var free []int
	for i := range mins {
		if pcts[i] > 0 {
			widths[i] = math.Max(mins[i], pcts[i]*target/100)
			remaining -= widths[i]
			continue
		}
		free = append(free, i)
	}
	var sumMin, sumMax float64
	for _, i := range free {
		sumMin += mins[i]
		sumMax += maxs[i]
	}
	for _, i := range free {
		switch {
		case remaining >= sumMax:
			widths[i] = maxs[i]
			if sumMax > 0 {
				widths[i] += (remaining - sumMax) * maxs[i] / sumMax
			} else {
				widths[i] += (remaining - sumMax) / float64(len(free))
			}
		case remaining > sumMin && sumMax > sumMin:
			widths[i] = mins[i] + (maxs[i]-mins[i])*(remaining-sumMin)/(sumMax-sumMin)
		default:
			widths[i] = mins[i]
		}
	}
	return widths
}

// layoutTable lays out the table b with its border box at the top y of the
// content area starting at x of width containingWidth.
func (e *Engine) layoutTable(b *html.Box, x, y, containingWidth float64) {
	t := e.buildTableInfo(b)
	mins, maxs, pcts := e.columnWidths(t)
	edges := b.Border.Horizontal() + b.Padding.Horizontal()
	spacing := 0.0
	if t.Cols > 0 {
		spacing = t.SpacingH * float64(t.Cols+1)
	}

	avail := math.Max(0, containingWidth-b.Margin.Horizontal()-edges)
	var content float64
	if w, auto := e.specifiedWidth(b, containingWidth); !auto {
		content = math.Max(w, sum(mins)+spacing)
	} else {
		content = math.Max(math.Min(sum(maxs)+spacing, avail), sum(mins)+spacing)
	}
	widths := distribute(mins, maxs, pcts, math.Max(0, content-spacing))
	content = math.Max(content, sum(widths)+spacing)
	width := content + edges
	e.resolveAutoMargins(b, containingWidth, width)

	b.Location = css.PointF{X: x + b.Margin.Left, Y: y}
	b.Size.Width = width
	cx := b.Location.X + b.Border.Left + b.Padding.Left
	cy := y + b.Border.Top + b.Padding.Top

	cur := cy
	var bottomCaptions []*html.Box
	for _, c := range t.Captions {
		if c.Style("caption-side") == "bottom" {
			bottomCaptions = append(bottomCaptions, c)
			continue
		}
		cur = e.layoutCaption(c, cx, cur, content)
	}

	gridHeight := e.layoutGrid(t, widths, cx, cur, content)
	cur += gridHeight

	for _, c := range bottomCaptions {
		cur = e.layoutCaption(c, cx, cur, content)
	}

	b.Size.Height = e.blockHeight(b, cur-cy) + b.Border.Vertical() + b.Padding.Vertical()
	updateActual(b)
}

func (e *Engine) layoutCaption(c *html.Box, cx, top, width float64) float64 {
	e.resolveEdges(c, width)
	e.guard(c, func() { e.layoutBlock(c, cx, top+c.Margin.Top, width) })
	return c.Location.Y + c.Size.Height + c.Margin.Bottom
}

// layoutGrid lays out the cells of t with the grid's top left at cx, top
// and returns the height of the grid including the outer spacing.
func (e *Engine) layoutGrid(t *TableInfo, widths []float64, cx, top, content float64) float64 {
	if len(t.Rows) == 0 {
		return 0
	}
	colLeft := make([]float64, t.Cols)
	xPos := cx + t.SpacingH
	for i, w := range widths {
		colLeft[i] = xPos
		xPos += w + t.SpacingH
	}
	spanWidth := func(c *TableCell) float64 {
		return sum(widths[c.Col:c.Col+c.Colspan]) + t.SpacingH*float64(c.Colspan-1)
	}

	// natural cell heights
	heights := make([]float64, len(t.Rows))
	for ri, row := range t.Rows {
		if row.Box != nil {
			if h, ok := css.ParseLength(row.Box.Style("height"), row.Box.FontSize(), 0); ok && !css.IsPercentage(row.Box.Style("height")) {
				heights[ri] = math.Max(0, h)
			}
		}
	}
	cells := t.cells()
	for _, c := range cells {
		cell := c.Box
		e.resolveEdges(cell, content)
		e.guard(cell, func() { e.placeBlock(cell, 0, 0, spanWidth(c)) })
		if c.Rowspan == 1 {
			heights[c.Row] = math.Max(heights[c.Row], cell.Size.Height)
		}
	}
	for _, c := range cells {
		if c.Rowspan == 1 {
			continue
		}
		have := sum(heights[c.Row:c.Row+c.Rowspan]) + t.SpacingV*float64(c.Rowspan-1)
		if need := c.Box.Size.Height; need > have {
			heights[c.lastRow()] += need - have
		}
	}

	rowTop := make([]float64, len(t.Rows))
	yPos := top + t.SpacingV
	for i, h := range heights {
		rowTop[i] = yPos
		yPos += h + t.SpacingV
	}

	for _, c := range cells {
		cell := c.Box
		shift(cell, colLeft[c.Col]-cell.Location.X, rowTop[c.Row]-cell.Location.Y)
		height := sum(heights[c.Row:c.Row+c.Rowspan]) + t.SpacingV*float64(c.Rowspan-1)
		if delta := height - cell.Size.Height; delta > 0 {
			switch cell.Style("vertical-align") {
			case "middle":
				shiftContent(cell, delta/2)
			case "bottom":
				shiftContent(cell, delta)
			}
		}
		cell.Size.Height = math.Max(height, cell.Size.Height)
		updateActual(cell)
	}

	rowWidth := xPos - cx - 2*t.SpacingH
	if t.Cols == 0 {
		rowWidth = 0
	}
	groupBounds := map[*html.Box]css.RectF{}
	for ri, row := range t.Rows {
		r := css.RectF{X: cx + t.SpacingH, Y: rowTop[ri], Width: rowWidth, Height: heights[ri]}
		if row.Box != nil {
			row.Box.Location = css.PointF{X: r.X, Y: r.Y}
			row.Box.Size = css.SizeF{Width: r.Width, Height: r.Height}
			updateActual(row.Box)
		}
		if row.Group != nil {
			if g, ok := groupBounds[row.Group]; ok {
				groupBounds[row.Group] = g.Union(r)
			} else {
				groupBounds[row.Group] = r
			}
		}
	}
	for _, g := range t.Groups {
		r, ok := groupBounds[g]
		if !ok {
			r = css.RectF{X: cx, Y: top}
		}
		g.Location = css.PointF{X: r.X, Y: r.Y}
		g.Size = css.SizeF{Width: r.Width, Height: r.Height}
		updateActual(g)
	}
	return yPos - top
}
