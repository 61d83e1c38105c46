package folio

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// ErrNoFrontMatter is returned when a content file does not start with a
// fenced YAML block.
var ErrNoFrontMatter = errors.New("folio: missing front matter")

// SplitFrontMatter separates the YAML block from the body. The file must
// start with a "---" line and the block ends at the next line that is
// exactly "---".
func SplitFrontMatter(src []byte) (front, body []byte, err error) {
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	first, rest, _ := cutLine(src)
	if !isFence(first) {
		return nil, nil, ErrNoFrontMatter
	}
	offset := 0
	for {
		line, next, more := cutLine(rest[offset:])
		if isFence(line) {
			return rest[:offset], next, nil
		}
		if !more {
			return nil, nil, ErrNoFrontMatter
		}
		offset = len(rest) - len(next)
	}
}

// cutLine returns the first line of b without its terminator, the remainder
// after the terminator, and whether a terminator was found.
func cutLine(b []byte) (line, rest []byte, found bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return b[:i], b[i+1:], true
}

func isFence(line []byte) bool {
	return string(bytes.TrimRight(line, "\r \t")) == fence
}

// ParseRecord decodes a content file into a ContentRecord.
func ParseRecord(src []byte) (ContentRecord, error) {
	front, body, err := SplitFrontMatter(src)
	if err != nil {
		return ContentRecord{}, err
	}
	var rec ContentRecord
	if err := yaml.Unmarshal(front, &rec); err != nil {
		return ContentRecord{}, fmt.Errorf("folio: decode front matter: %w", err)
	}
	rec.Tags = NormalizeTags(rec.Tags)
	if len(rec.Extra) == 0 {
		rec.Extra = nil
	}
	if rec.Collection != "" {
		c, err := ParseCollection(string(rec.Collection))
		if err != nil {
			return ContentRecord{}, err
		}
		rec.Collection = c
	}
	rec.Body = string(body)
	return rec, nil
}

// MarshalFrontMatter encodes the record's metadata as a fenced YAML block.
func MarshalFrontMatter(rec ContentRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fence + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("folio: encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString(fence + "\n")
	return buf.Bytes(), nil
}

// NormalizeTags trims and lowercases tags, dropping empties and duplicates
// while keeping the authored order.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
