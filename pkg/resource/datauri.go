package resource

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// ParseDataURI decodes "data:[<mediatype>][;base64],<data>".
func ParseDataURI(uri string) (*Resource, error) {
	uri = strings.TrimSpace(uri)
	if !IsDataURI(uri) {
		return nil, fmt.Errorf("not a data URI")
	}
	rest := uri[len("data:"):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, fmt.Errorf("data URI without data")
	}
	meta, data := rest[:comma], rest[comma+1:]

	isBase64 := false
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		isBase64 = true
		meta = meta[:len(meta)-len(";base64")]
	}
	if meta == "" {
		meta = "text/plain;charset=US-ASCII"
	}

	var body []byte
	if isBase64 {
		// drop line wrapping
		data = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, data)
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
			if err != nil {
				return nil, fmt.Errorf("decoding base64 data URI: %w", err)
			}
		}
		body = decoded
	} else {
		unescaped, err := url.PathUnescape(data)
		if err != nil {
			return nil, fmt.Errorf("decoding data URI: %w", err)
		}
		body = []byte(unescaped)
	}
	return &Resource{URL: "data:", ContentType: meta, Body: body}, nil
}
