package codec

import (
	"strings"
	"testing"

	"github.com/remaplang/remap/pkg/remap/document"
)

func decodeString(t *testing.T, format, src string) document.Value {
	t.Helper()
	v, err := Decode(format, strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode %s %q: %v", format, src, err)
	}
	return v
}

func encodeString(t *testing.T, format string, v document.Value, opts Options) string {
	t.Helper()
	var sb strings.Builder
	if err := Encode(format, &sb, v, opts); err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return sb.String()
}

func TestJSONRoundTripPreservesKeyOrder(t *testing.T) {
	in := `{"zebra":1,"apple":{"y":2,"x":1},"mango":[3,1,2]}`
	v := decodeString(t, "json", in)
	out := strings.TrimSpace(encodeString(t, "json", v, Options{Compact: true}))
	if out != in {
		t.Errorf("got  %s\nwant %s", out, in)
	}
}

func TestJSONNumbers(t *testing.T) {
	v := decodeString(t, "json", `{"i":42,"f":1.5,"whole":2.0,"big":1e3}`)
	m := v.(*document.Map)

	i, _ := m.Get("i")
	if _, ok := i.(*document.Integer); !ok {
		t.Errorf("42 should decode as an integer, got %T", i)
	}
	f, _ := m.Get("f")
	if _, ok := f.(*document.Float); !ok {
		t.Errorf("1.5 should decode as a float, got %T", f)
	}
	whole, _ := m.Get("whole")
	if _, ok := whole.(*document.Float); !ok {
		t.Errorf("2.0 should stay a float, got %T", whole)
	}

	out := strings.TrimSpace(encodeString(t, "json", v, Options{Compact: true}))
	want := `{"i":42,"f":1.5,"whole":2.0,"big":1000.0}`
	if out != want {
		t.Errorf("got  %s\nwant %s", out, want)
	}
}

func TestJSONPrettyOutput(t *testing.T) {
	v := decodeString(t, "json", `{"a":1,"b":[2]}`)
	got := encodeString(t, "json", v, Options{})
	want := "{\n  \"a\": 1,\n  \"b\": [\n    2\n  ]\n}\n"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestJSONTrailingData(t *testing.T) {
	if _, err := Decode("json", strings.NewReader(`{"a":1} {"b":2}`)); err == nil {
		t.Error("expected an error for trailing data")
	}
}

func TestNDJSONScanner(t *testing.T) {
	src := "{\"a\":1}\n{\"a\":2}\n\n{\"a\":3}\n"
	sc := NewNDJSONScanner(strings.NewReader(src))
	var got []string
	for {
		v, err := sc.Next()
		if err != nil {
			break
		}
		var sb strings.Builder
		if err := Encode("json", &sb, v, Options{Compact: true}); err != nil {
			t.Fatal(err)
		}
		got = append(got, strings.TrimSpace(sb.String()))
	}
	want := []string{`{"a":1}`, `{"a":2}`, `{"a":3}`}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNDJSONWriterSkipsNullRecords(t *testing.T) {
	var sb strings.Builder
	w := NewNDJSONWriter(&sb)
	for _, v := range []document.Value{
		decodeString(t, "json", `{"a":1}`),
		document.NULL,
		decodeString(t, "json", `{"a":2}`),
	} {
		if err := w.Write(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "{\"a\":1}\n{\"a\":2}\n" {
		t.Errorf("got %q", sb.String())
	}
}

func TestNDJSONDecodeWholeStream(t *testing.T) {
	v := decodeString(t, "ndjson", "1\n2\n3\n")
	arr, ok := v.(*document.Array)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected a 3-element array, got %s", v.Inspect())
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	in := "zebra: 1\napple:\n  y: two\n  x: true\nlist:\n  - 1\n  - 2.5\n"
	v := decodeString(t, "yaml", in)
	m := v.(*document.Map)

	keys := m.Keys()
	if keys[0] != "zebra" || keys[1] != "apple" || keys[2] != "list" {
		t.Errorf("key order = %v", keys)
	}
	out := encodeString(t, "yaml", v, Options{})
	back := decodeString(t, "yaml", out)
	if !document.Equal(v, back) {
		t.Errorf("round trip changed the document:\n%s", out)
	}
}

func TestYAMLScalarTags(t *testing.T) {
	v := decodeString(t, "yaml", "i: 3\nf: 1.5\nb: false\nn: null\ns: hello\n")
	m := v.(*document.Map)
	checks := []struct {
		key  string
		want document.ValueType
	}{
		{"i", document.INTEGER_VALUE},
		{"f", document.FLOAT_VALUE},
		{"b", document.BOOLEAN_VALUE},
		{"n", document.NULL_VALUE},
		{"s", document.STRING_VALUE},
	}
	for _, c := range checks {
		got, _ := m.Get(c.key)
		if got.Type() != c.want {
			t.Errorf("%s: type = %s, want %s", c.key, got.Type(), c.want)
		}
	}
}

func TestCSVDecode(t *testing.T) {
	src := "name,age,active\nAda,36,true\nBob,,false\n"
	v := decodeString(t, "csv", src)
	arr := v.(*document.Array)
	if len(arr.Elements) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(arr.Elements))
	}
	row := arr.Elements[0].(*document.Map)
	age, _ := row.Get("age")
	if n, ok := age.(*document.Integer); !ok || n.Value != 36 {
		t.Errorf("age should infer as integer 36, got %s", age.Inspect())
	}
	row2 := arr.Elements[1].(*document.Map)
	missing, _ := row2.Get("age")
	if missing != document.NULL {
		t.Errorf("empty cell should be null, got %s", missing.Inspect())
	}
}

func TestCSVEncode(t *testing.T) {
	v := decodeString(t, "json", `[{"a":1,"b":"x"},{"a":2,"c":true}]`)
	got := encodeString(t, "csv", v, Options{})
	want := "a,b,c\n1,x,\n2,,true\n"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestCSVEncodeRejectsNonArray(t *testing.T) {
	var sb strings.Builder
	if err := Encode("csv", &sb, document.NewMap(), Options{}); err == nil {
		t.Error("expected an error for non-array csv output")
	}
}

func TestMarkdownFrontmatter(t *testing.T) {
	src := "---\ntitle: Hello\ndraft: true\n---\n\n# Heading\n\nBody text.\n"
	v := decodeString(t, "markdown", src)
	m := v.(*document.Map)

	title, _ := m.Get("title")
	if s, ok := title.(*document.String); !ok || s.Value != "Hello" {
		t.Errorf("title = %v", title)
	}
	body, _ := m.Get("body")
	if !strings.Contains(body.Inspect(), "# Heading") {
		t.Errorf("body = %q", body.Inspect())
	}
	html, _ := m.Get("html")
	if !strings.Contains(html.Inspect(), "<h1") {
		t.Errorf("html = %q", html.Inspect())
	}
}

func TestMarkdownWithoutFrontmatter(t *testing.T) {
	v := decodeString(t, "markdown", "plain text\n")
	m := v.(*document.Map)
	if _, ok := m.Get("title"); ok {
		t.Error("no frontmatter keys expected")
	}
	if body, _ := m.Get("body"); !strings.Contains(body.Inspect(), "plain text") {
		t.Errorf("body = %q", body.Inspect())
	}
}

func TestMarkdownEncode(t *testing.T) {
	v := decodeString(t, "markdown", "---\ntitle: Hi\n---\nBody.\n")
	got := encodeString(t, "markdown", v, Options{})
	if !strings.HasPrefix(got, "---\n") || !strings.Contains(got, "title: Hi") {
		t.Errorf("missing frontmatter: %q", got)
	}
	if !strings.Contains(got, "Body.") {
		t.Errorf("missing body: %q", got)
	}
	if strings.Contains(got, "html:") {
		t.Errorf("rendered html must not round-trip into frontmatter: %q", got)
	}
}

func TestLinesCodec(t *testing.T) {
	v := decodeString(t, "lines", "one\ntwo\nthree\n")
	arr := v.(*document.Array)
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(arr.Elements))
	}
	got := encodeString(t, "lines", v, Options{})
	if got != "one\ntwo\nthree\n" {
		t.Errorf("got %q", got)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"data.json", "json"},
		{"data.JSON", "json"},
		{"data.ndjson", "ndjson"},
		{"data.jsonl", "ndjson"},
		{"data.yaml", "yaml"},
		{"data.yml", "yaml"},
		{"data.csv", "csv"},
		{"report.md", "markdown"},
		{"notes.txt", "text"},
		{"dump.json.gz", "json"},
		{"out.db", "sqlite"},
		{"out.sqlite3", "sqlite"},
		{"mystery", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectFormat(tt.path); got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := Decode("xml", strings.NewReader("")); err == nil {
		t.Error("expected an error for an unknown input format")
	}
	if err := Encode("xml", &strings.Builder{}, document.NULL, Options{}); err == nil {
		t.Error("expected an error for an unknown output format")
	}
}
