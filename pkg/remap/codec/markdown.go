package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/remaplang/remap/pkg/remap/document"
)

// decodeMarkdown turns a markdown file into a map: any YAML frontmatter
// keys at the top level, plus "body" (the raw markdown after the
// frontmatter) and "html" (the GFM-rendered body). This makes document
// metadata reachable by ordinary paths.
func decodeMarkdown(r io.Reader) (document.Value, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	front, body := splitFrontmatter(string(raw))

	out := document.NewMap()
	if front != "" {
		meta, err := decodeYAML(strings.NewReader(front))
		if err != nil {
			return nil, fmt.Errorf("invalid frontmatter: %w", err)
		}
		if m, ok := meta.(*document.Map); ok {
			for _, key := range m.Keys() {
				v, _ := m.Get(key)
				out.Set(key, v)
			}
		}
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	var rendered bytes.Buffer
	if err := md.Convert([]byte(body), &rendered); err != nil {
		return nil, err
	}

	out.Set("body", &document.String{Value: body})
	out.Set("html", &document.String{Value: rendered.String()})
	return out, nil
}

// splitFrontmatter peels a leading "---\n...\n---" block off the source.
func splitFrontmatter(src string) (front, body string) {
	if !strings.HasPrefix(src, "---\n") && !strings.HasPrefix(src, "---\r\n") {
		return "", src
	}
	rest := src[strings.Index(src, "\n")+1:]
	for _, marker := range []string{"\n---\n", "\n---\r\n"} {
		if i := strings.Index(rest, marker); i >= 0 {
			return rest[:i], rest[i+len(marker):]
		}
	}
	if strings.HasSuffix(rest, "\n---") {
		return strings.TrimSuffix(rest, "\n---"), ""
	}
	return "", src
}

// encodeMarkdown writes a map back as frontmatter plus body. The "html"
// key is derived on decode and is not written out; a non-map document
// just writes its text.
func encodeMarkdown(w io.Writer, v document.Value) error {
	m, ok := v.(*document.Map)
	if !ok {
		_, err := io.WriteString(w, stringOrInspect(v))
		return err
	}

	meta := document.NewMap()
	for _, key := range m.Keys() {
		if key == "body" || key == "html" {
			continue
		}
		val, _ := m.Get(key)
		meta.Set(key, val)
	}

	if meta.Len() > 0 {
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
		if err := encodeYAML(w, meta); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
	}

	if body, ok := m.Get("body"); ok {
		if _, err := io.WriteString(w, stringOrInspect(body)); err != nil {
			return err
		}
	}
	return nil
}

func stringOrInspect(v document.Value) string {
	if s, ok := v.(*document.String); ok {
		return s.Value
	}
	return v.Inspect()
}
