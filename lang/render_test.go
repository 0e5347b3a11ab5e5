package lang

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// testFS is an in-memory FS keyed by absolute path.
type testFS map[string]string

func (fs testFS) Exists(path string) bool {
	_, ok := fs[path]

	return ok
}

func (fs testFS) ReadFile(path string) ([]byte, error) {
	data, ok := fs[path]
	if !ok {
		return nil, fmt.Errorf("open %s: file does not exist", path)
	}

	return []byte(data), nil
}

// countingFS counts ReadFile calls through to the underlying FS.
type countingFS struct {
	testFS

	reads map[string]int
}

func (fs *countingFS) ReadFile(path string) ([]byte, error) {
	if fs.reads == nil {
		fs.reads = make(map[string]int)
	}

	fs.reads[path]++

	return fs.testFS.ReadFile(path)
}

func render(t *testing.T, src string, opts ...RenderOption) string {
	t.Helper()

	cfg, err := Parse(src, WithLookup(MapLookup(nil)))
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}

	out, err := Render(cfg, opts...)
	if err != nil {
		t.Fatalf("Render(%q) error: %v", src, err)
	}

	return out
}

func TestRender_Output(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "directive round-trips exactly",
			input: "worker_processes auto;",
			want:  "worker_processes auto;",
		},
		{
			name:  "quoted argument preserved",
			input: `log_format main "a b";`,
			want:  `log_format main "a b";`,
		},
		{
			name:  "block with nested directive",
			input: "events { worker_connections 1024; }",
			want:  "events {\n  worker_connections 1024;\n}",
		},
		{
			name:  "empty block",
			input: "events { }",
			want:  "events {\n}",
		},
		{
			name:  "block arguments not quoted",
			input: "upstream backend { server 10.0.0.1:80; }",
			want:  "upstream backend {\n  server 10.0.0.1:80;\n}",
		},
		{
			name:  "if condition verbatim",
			input: "if ($request_method = POST) { return 405; }",
			want:  "if ($request_method = POST) {\n  return 405;\n}",
		},
		{
			name:  "equals coalescing",
			input: "try_files $uri =404;",
			want:  "try_files $uri =404;",
		},
		{
			name:  "nested blocks indent per level",
			input: "http { server { listen 80; } }",
			want:  "http {\n  server {\n    listen 80;\n  }\n}",
		},
		{
			name:  "location prefix match",
			input: "location /api { return 200; }",
			want:  "location /api {\n  return 200;\n}",
		},
		{
			name:  "location exact match",
			input: "location = /healthz { return 200; }",
			want:  "location = /healthz {\n  return 200;\n}",
		},
		{
			name:  "location regex match",
			input: `location ~ "\.php$" { internal; }`,
			want:  "location ~ \\.php$ {\n  internal;\n}",
		},
		{
			name:  "embedded sigil overrides node modifier",
			input: `location ~ "=/x" { }`,
			want:  "location = /x {\n}",
		},
		{
			name:  "multiple statements joined by newline",
			input: "gzip on;\ngzip_types text/plain;",
			want:  "gzip on;\ngzip_types text/plain;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, tt.input); got != tt.want {
				t.Errorf("render(%q)\n got: %q\nwant: %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRender_MultiPathLocation(t *testing.T) {
	got := render(t, `location in ["/api", "=/exact"] { return 200; }`)

	want := strings.Join([]string{
		"location /api {",
		"  return 200;",
		"}",
		"location = /exact {",
		"  return 200;",
		"}",
	}, "\n")

	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_PathSigilPrecedence(t *testing.T) {
	// Two-character sigils must win over their one-character prefixes.
	tests := []struct {
		path string
		want string
	}{
		{"~*/img", "location ~* /img {\n}"},
		{"^~/static", "location ^~ /static {\n}"},
		{"~/regex", "location ~ /regex {\n}"},
		{"=/exact", "location = /exact {\n}"},
		{"/plain", "location /plain {\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			src := fmt.Sprintf("location in [%q, %q] { }", tt.path, "/other")
			want := tt.want + "\nlocation /other {\n}"

			if got := render(t, src); got != want {
				t.Errorf("got:\n%s\nwant:\n%s", got, want)
			}
		})
	}
}

func TestRender_TemplateExpansion(t *testing.T) {
	src := `
%hardening = {
  add_header X-Frame-Options DENY;
};
server {
  %inline(%hardening);
}
`

	want := "server {\n  add_header X-Frame-Options DENY;\n}"

	if got := render(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_TemplateDefinedAfterUse(t *testing.T) {
	src := `
server {
  %inline(%later);
}
%later = { gzip on; };
`

	want := "server {\n  gzip on;\n}"

	if got := render(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_TemplateLastDefinitionWins(t *testing.T) {
	src := `
%t = { gzip off; };
%t = { gzip on; };
%inline(%t);
`

	if got := render(t, src); got != "gzip on;" {
		t.Errorf("got %q, want %q", got, "gzip on;")
	}
}

func TestRender_NestedTemplateExpansion(t *testing.T) {
	src := `
%inner = { internal; };
%outer = {
  location /x {
    %inline(%inner);
  }
};
server {
  %inline(%outer);
}
`

	want := "server {\n  location /x {\n    internal;\n  }\n}"

	if got := render(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_UndefinedTemplate(t *testing.T) {
	cfg, err := Parse(`
%hardening = { gzip on; };
%inline(%harden);
`, WithLookup(MapLookup(nil)))
	if err != nil {
		t.Fatal(err)
	}

	_, err = Render(cfg)
	if !errors.Is(err, ErrUndefinedTemplate) {
		t.Fatalf("error = %v, want ErrUndefinedTemplate", err)
	}

	var langErr *Error
	if !errors.As(err, &langErr) {
		t.Fatalf("error %T does not unwrap to *Error", err)
	}

	var suggested string

	for _, a := range langErr.LogValue().Group() {
		if a.Key == "did_you_mean" {
			suggested = a.Value.String()
		}
	}

	if suggested != "%hardening" {
		t.Errorf("did_you_mean = %q, want %%hardening", suggested)
	}
}

func TestRender_NoExpand(t *testing.T) {
	fsys := testFS{"/src/common.ngxs": "gzip on;"}

	src := `%h = { add_header X 1; };
%import("common.ngxs");
%inline(%h);`

	// Disabling expansion only keeps template references verbatim:
	// definitions are still dropped and imports still inlined.
	want := "gzip on;\n%inline(%h);"

	got := render(t, src,
		WithExpand(false),
		WithFS(fsys),
		WithSearchPath("/src"),
	)
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_Preserve(t *testing.T) {
	src := strings.Join([]string{
		"%h = {",
		"  add_header X 1;",
		"};",
		"server {",
		"  %inline(%h);",
		`  %import("common.ngxs");`,
		"}",
	}, "\n")

	// Preserve mode round-trips: the output is valid compiler input and
	// the import is never resolved.
	want := src

	got := render(t, src, WithPreserve(true))
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRender_Indent(t *testing.T) {
	src := "server { listen 80; }"

	if got := render(t, src, WithIndent("\t")); got != "server {\n\tlisten 80;\n}" {
		t.Errorf("tab indent got %q", got)
	}

	if got := render(t, src, WithIndent("    ")); got != "server {\n    listen 80;\n}" {
		t.Errorf("four-space indent got %q", got)
	}
}

func TestRender_QuotesInjectedWhitespace(t *testing.T) {
	cfg, err := Parse(`root %env("DOCROOT");`,
		WithLookup(MapLookup(map[string]string{"DOCROOT": "/var/www html"})))
	if err != nil {
		t.Fatal(err)
	}

	out, err := Render(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if want := `root "/var/www html";`; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRender_Import(t *testing.T) {
	fs := testFS{
		"/src/common.ngxs": "gzip on;\ngzip_types text/plain;",
	}

	cfg, err := Parse(`
server {
  %import("common.ngxs");
  listen 80;
}
`, WithLookup(MapLookup(nil)))
	if err != nil {
		t.Fatal(err)
	}

	out, err := Render(cfg, WithOrigin("/src/main.ngxs"), WithFS(fs))
	if err != nil {
		t.Fatal(err)
	}

	want := "server {\n  gzip on;\n  gzip_types text/plain;\n  listen 80;\n}"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestRender_ImportSearchPath(t *testing.T) {
	fs := testFS{
		"/lib/shared.ngxs": "sendfile on;",
	}

	cfg, err := Parse(`%import("shared.ngxs");`, WithLookup(MapLookup(nil)))
	if err != nil {
		t.Fatal(err)
	}

	out, err := Render(cfg,
		WithOrigin("/src/main.ngxs"),
		WithFS(fs),
		WithSearchPath("/lib"),
	)
	if err != nil {
		t.Fatal(err)
	}

	if out != "sendfile on;" {
		t.Errorf("got %q, want %q", out, "sendfile on;")
	}
}

func TestRender_ImportTemplateVisibleToImporter(t *testing.T) {
	fs := testFS{
		"/src/lib.ngxs": "%shared = { sendfile on; };",
	}

	cfg, err := Parse(`
%import("lib.ngxs");
server {
  %inline(%shared);
}
`, WithLookup(MapLookup(nil)))
	if err != nil {
		t.Fatal(err)
	}

	out, err := Render(cfg, WithOrigin("/src/main.ngxs"), WithFS(fs))
	if err != nil {
		t.Fatal(err)
	}

	want := "server {\n  sendfile on;\n}"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestRender_ImportNotFound(t *testing.T) {
	cfg, err := Parse(`%import("missing.ngxs");`, WithLookup(MapLookup(nil)))
	if err != nil {
		t.Fatal(err)
	}

	_, err = Render(cfg, WithOrigin("/src/main.ngxs"), WithFS(testFS{}))
	if !errors.Is(err, ErrImportNotFound) {
		t.Fatalf("error = %v, want ErrImportNotFound", err)
	}
}

func TestRender_ImportCycle(t *testing.T) {
	fs := testFS{
		"/src/a.ngxs": `%import("b.ngxs");`,
		"/src/b.ngxs": `%import("a.ngxs");`,
	}

	cfg, err := Parse(fs["/src/a.ngxs"], WithLookup(MapLookup(nil)))
	if err != nil {
		t.Fatal(err)
	}

	_, err = Render(cfg, WithOrigin("/src/a.ngxs"), WithFS(fs))
	if !errors.Is(err, ErrImportCycle) {
		t.Fatalf("error = %v, want ErrImportCycle", err)
	}

	// The chain names every participant, ending where it started.
	msg := err.Error()
	if !strings.Contains(msg, "/src/a.ngxs -> /src/b.ngxs -> /src/a.ngxs") {
		t.Errorf("cycle chain missing from error: %q", msg)
	}
}

func TestRender_SelfImportCycle(t *testing.T) {
	fs := testFS{
		"/src/a.ngxs": `%import("a.ngxs");`,
	}

	cfg, err := Parse(fs["/src/a.ngxs"], WithLookup(MapLookup(nil)))
	if err != nil {
		t.Fatal(err)
	}

	_, err = Render(cfg, WithOrigin("/src/a.ngxs"), WithFS(fs))
	if !errors.Is(err, ErrImportCycle) {
		t.Fatalf("error = %v, want ErrImportCycle", err)
	}
}

func TestRender_ImportParsedOnceRenderedTwice(t *testing.T) {
	fs := &countingFS{
		testFS: testFS{
			"/src/c.ngxs": "gzip on;",
		},
	}

	cfg, err := Parse(`
%import("c.ngxs");
%import("c.ngxs");
`, WithLookup(MapLookup(nil)))
	if err != nil {
		t.Fatal(err)
	}

	out, err := Render(cfg, WithOrigin("/src/main.ngxs"), WithFS(fs))
	if err != nil {
		t.Fatal(err)
	}

	if want := "gzip on;\ngzip on;"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	if n := fs.reads["/src/c.ngxs"]; n != 1 {
		t.Errorf("imported file read %d times, want 1", n)
	}
}

func TestRender_Idempotent(t *testing.T) {
	sources := []string{
		"worker_processes auto;",
		"http {\n  server {\n    location = /x {\n      return 200;\n    }\n  }\n}",
		`log_format main "a b";`,
		"if ($host = example.com) {\n  return 301;\n}",
	}

	for _, src := range sources {
		first := render(t, src)
		second := render(t, first)

		if first != second {
			t.Errorf("render not idempotent:\nfirst:  %q\nsecond: %q", first, second)
		}
	}
}
