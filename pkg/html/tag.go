package html

import "strings"

// Attribute is one name/value pair of a tag. Names are lowercase.
type Attribute struct {
	Name  string
	Value string
}

// Attributes is an ordered attribute list with case-insensitive names.
type Attributes struct {
	list []Attribute
}

// Get returns the value of name.
func (a *Attributes) Get(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	name = strings.ToLower(name)
	for _, attr := range a.list {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Has reports whether name is present.
func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Set stores value under name. An existing attribute keeps its position and
// takes the new value.
func (a *Attributes) Set(name, value string) {
	name = strings.ToLower(name)
	for i := range a.list {
		if a.list[i].Name == name {
			a.list[i].Value = value
			return
		}
	}
	a.list = append(a.list, Attribute{Name: name, Value: value})
}

// Delete removes name.
func (a *Attributes) Delete(name string) {
	name = strings.ToLower(name)
	for i := range a.list {
		if a.list[i].Name == name {
			a.list = append(a.list[:i], a.list[i+1:]...)
			return
		}
	}
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.list)
}

// All returns the attributes in source order.
func (a *Attributes) All() []Attribute {
	if a == nil {
		return nil
	}
	return append([]Attribute(nil), a.list...)
}

// Map returns the attributes as a map.
func (a *Attributes) Map() map[string]string {
	m := make(map[string]string, a.Len())
	if a != nil {
		for _, attr := range a.list {
			m[attr.Name] = attr.Value
		}
	}
	return m
}

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoidTag reports whether name never has content.
func IsVoidTag(name string) bool {
	return voidTags[strings.ToLower(name)]
}

// Tag is the element information of a box.
type Tag struct {
	Name  string
	Attrs Attributes
	// Void is set for void elements and for tags closed with "/>".
	Void bool
}

// NewTag creates a tag with a lowercased name.
func NewTag(name string, selfClosing bool) *Tag {
	name = strings.ToLower(name)
	return &Tag{Name: name, Void: selfClosing || voidTags[name]}
}

// Attr returns the value of an attribute.
func (t *Tag) Attr(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	return t.Attrs.Get(name)
}

// HasAttr reports whether the attribute is present.
func (t *Tag) HasAttr(name string) bool {
	_, ok := t.Attr(name)
	return ok
}
