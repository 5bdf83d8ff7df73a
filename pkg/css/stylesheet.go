package css

import (
	"sort"
	"strings"
)

// MediaAll is the media bucket for rules outside any @media block.
const MediaAll = "all"

// SelectionKey is the selector key under which ::selection rules are stored.
const SelectionKey = "::selection"

// SelectorItem is one ancestor requirement of a selector.
type SelectorItem struct {
	Token string
	// DirectParent is set when the item was joined by '>' and must match
	// the immediate parent instead of any ancestor.
	DirectParent bool
}

// Block is a single parsed rule.
type Block struct {
	// Key is the rightmost simple selector: "tag", ".class", "#id",
	// "tag.class", "tag#id" or "*".
	Key string
	// Ancestors lists the remaining selector tokens, nearest first.
	Ancestors []SelectorItem
	// Hover marks :hover rules, which are not applied statically.
	Hover      bool
	Properties Properties
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	c := &Block{Key: b.Key, Hover: b.Hover, Properties: b.Properties.Clone()}
	if len(b.Ancestors) > 0 {
		c.Ancestors = append([]SelectorItem(nil), b.Ancestors...)
	}
	return c
}

// EqualsSelector reports whether both blocks have the same selector.
func (b *Block) EqualsSelector(o *Block) bool {
	if b.Key != o.Key || b.Hover != o.Hover || len(b.Ancestors) != len(o.Ancestors) {
		return false
	}
	for i := range b.Ancestors {
		if b.Ancestors[i] != o.Ancestors[i] {
			return false
		}
	}
	return true
}

// Equals reports whether both blocks have the same selector and properties.
func (b *Block) Equals(o *Block) bool {
	return b.EqualsSelector(o) && b.Properties.Equals(o.Properties)
}

// Selector renders the block's selector back to CSS text.
func (b *Block) Selector() string {
	var parts []string
	for i := len(b.Ancestors) - 1; i >= 0; i-- {
		parts = append(parts, b.Ancestors[i].Token)
		if b.Ancestors[i].DirectParent {
			parts = append(parts, ">")
		}
	}
	key := b.Key
	if b.Hover {
		key += ":hover"
	}
	return strings.Join(append(parts, key), " ")
}

// String renders the block as a CSS rule.
func (b *Block) String() string {
	return b.Selector() + " { " + b.Properties.String() + " }"
}

// StylesheetData holds parsed blocks by media bucket and selector key. The
// order of blocks under one key is the cascade order.
type StylesheetData struct {
	media map[string]map[string][]*Block
}

// NewStylesheetData returns an empty stylesheet.
func NewStylesheetData() *StylesheetData {
	return &StylesheetData{media: map[string]map[string][]*Block{MediaAll: {}}}
}

// Add appends b to the bucket of the given media type. An identical block
// already present is removed first so that the new one takes its place at
// the end.
func (d *StylesheetData) Add(media string, b *Block) {
	media = strings.ToLower(strings.TrimSpace(media))
	if media == "" {
		media = MediaAll
	}
	keys, ok := d.media[media]
	if !ok {
		keys = map[string][]*Block{}
		d.media[media] = keys
	}
	list := keys[b.Key]
	for i, existing := range list {
		if existing.Equals(b) {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	keys[b.Key] = append(list, b)
}

// Blocks returns the blocks stored for key in the given media bucket.
func (d *StylesheetData) Blocks(media, key string) []*Block {
	if d == nil {
		return nil
	}
	return d.media[media][key]
}

// ContainsKey reports whether any block is stored for key.
func (d *StylesheetData) ContainsKey(media, key string) bool {
	return len(d.Blocks(media, key)) > 0
}

// Media returns the media bucket names, "all" first and the rest sorted.
func (d *StylesheetData) Media() []string {
	names := make([]string, 0, len(d.media))
	for m := range d.media {
		if m != MediaAll {
			names = append(names, m)
		}
	}
	sort.Strings(names)
	return append([]string{MediaAll}, names...)
}

// Keys returns the selector keys of a media bucket in sorted order.
func (d *StylesheetData) Keys(media string) []string {
	keys := make([]string, 0, len(d.media[media]))
	for k := range d.media[media] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the total number of stored blocks.
func (d *StylesheetData) Len() int {
	n := 0
	for _, keys := range d.media {
		for _, list := range keys {
			n += len(list)
		}
	}
	return n
}

// Clone returns a deep copy. Changes to the copy never reach d.
func (d *StylesheetData) Clone() *StylesheetData {
	c := &StylesheetData{media: make(map[string]map[string][]*Block, len(d.media))}
	for m, keys := range d.media {
		ck := make(map[string][]*Block, len(keys))
		for k, list := range keys {
			cl := make([]*Block, len(list))
			for i, b := range list {
				cl[i] = b.Clone()
			}
			ck[k] = cl
		}
		c.media[m] = ck
	}
	return c
}

// Combine appends every block of other to d, preserving other's order.
func (d *StylesheetData) Combine(other *StylesheetData) {
	if other == nil {
		return
	}
	for _, m := range other.Media() {
		for _, k := range other.Keys(m) {
			for _, b := range other.media[m][k] {
				d.Add(m, b.Clone())
			}
		}
	}
}
