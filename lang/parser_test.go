package lang

import (
	"errors"
	"testing"
)

func parse(t *testing.T, src string, env map[string]string) *Config {
	t.Helper()

	cfg, err := Parse(src, WithLookup(MapLookup(env)))
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}

	return cfg
}

func TestParser_Directive(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantArgs []string
	}{
		{
			name:     "single argument",
			input:    "worker_processes auto;",
			wantName: "worker_processes",
			wantArgs: []string{"auto"},
		},
		{
			name:     "number argument",
			input:    "worker_connections 1024;",
			wantName: "worker_connections",
			wantArgs: []string{"1024"},
		},
		{
			name:     "no arguments",
			input:    "ip_hash;",
			wantName: "ip_hash",
			wantArgs: nil,
		},
		{
			name:     "string argument keeps quotes",
			input:    `add_header X-Frame-Options "SAMEORIGIN always";`,
			wantName: "add_header",
			wantArgs: []string{"X-Frame-Options", `"SAMEORIGIN always"`},
		},
		{
			name:     "equals coalesces with following word",
			input:    "try_files $uri =404;",
			wantName: "try_files",
			wantArgs: []string{"$uri", "=404"},
		},
		{
			name:     "runtime variables pass through",
			input:    "proxy_set_header Host $host;",
			wantName: "proxy_set_header",
			wantArgs: []string{"Host", "$host"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parse(t, tt.input, nil)

			if len(cfg.Statements) != 1 {
				t.Fatalf("got %d statements, want 1", len(cfg.Statements))
			}

			dir, ok := cfg.Statements[0].(*Directive)
			if !ok {
				t.Fatalf("statement is %T, want *Directive", cfg.Statements[0])
			}

			if dir.Name != tt.wantName {
				t.Errorf("name = %q, want %q", dir.Name, tt.wantName)
			}

			if !equalStrings(dir.Args, tt.wantArgs) {
				t.Errorf("args = %q, want %q", dir.Args, tt.wantArgs)
			}
		})
	}
}

func TestParser_Block(t *testing.T) {
	cfg := parse(t, "upstream backend { server 10.0.0.1:80; ip_hash; }", nil)

	if len(cfg.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(cfg.Statements))
	}

	blk, ok := cfg.Statements[0].(*Block)
	if !ok {
		t.Fatalf("statement is %T, want *Block", cfg.Statements[0])
	}

	if blk.Name != "upstream" {
		t.Errorf("name = %q, want upstream", blk.Name)
	}

	if !equalStrings(blk.Args, []string{"backend"}) {
		t.Errorf("args = %q, want [backend]", blk.Args)
	}

	if len(blk.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(blk.Children))
	}

	server, ok := blk.Children[0].(*Directive)
	if !ok || server.Name != "server" {
		t.Errorf("first child = %#v, want server directive", blk.Children[0])
	}
}

func TestParser_IfBlock(t *testing.T) {
	cfg := parse(t, "if ($request_method = POST) { return 405; }", nil)

	blk, ok := cfg.Statements[0].(*Block)
	if !ok {
		t.Fatalf("statement is %T, want *Block", cfg.Statements[0])
	}

	if blk.Name != "if" {
		t.Errorf("name = %q, want if", blk.Name)
	}

	if !equalStrings(blk.Args, []string{"($request_method = POST)"}) {
		t.Errorf("args = %q, want [($request_method = POST)]", blk.Args)
	}

	if len(blk.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(blk.Children))
	}
}

func TestParser_Location(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMod  MatchModifier
		wantPath []string
	}{
		{
			name:     "prefix match",
			input:    "location /api { }",
			wantMod:  MatchPrefix,
			wantPath: []string{"/api"},
		},
		{
			name:     "exact match",
			input:    "location = /healthz { }",
			wantMod:  MatchExact,
			wantPath: []string{"/healthz"},
		},
		{
			name:     "regex match",
			input:    `location ~ "\.php$" { }`,
			wantMod:  MatchRegex,
			wantPath: []string{`\.php$`},
		},
		{
			name:     "case-insensitive regex match",
			input:    "location ~* /img { }",
			wantMod:  MatchRegexInsensitive,
			wantPath: []string{"/img"},
		},
		{
			name:     "priority prefix match",
			input:    "location ^~ /static { }",
			wantMod:  MatchPriorityPrefix,
			wantPath: []string{"/static"},
		},
		{
			name:     "multi-path keeps sigils for render",
			input:    `location in ["/api", "=/exact", "~*/img"] { }`,
			wantMod:  MatchPrefix,
			wantPath: []string{"/api", "=/exact", "~*/img"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parse(t, tt.input, nil)

			loc, ok := cfg.Statements[0].(*Location)
			if !ok {
				t.Fatalf("statement is %T, want *Location", cfg.Statements[0])
			}

			if loc.Modifier != tt.wantMod {
				t.Errorf("modifier = %v, want %v", loc.Modifier, tt.wantMod)
			}

			if !equalStrings(loc.Paths, tt.wantPath) {
				t.Errorf("paths = %q, want %q", loc.Paths, tt.wantPath)
			}
		})
	}
}

func TestParser_TemplateDefAndRef(t *testing.T) {
	cfg := parse(t, `
%hardening = {
  add_header X-Frame-Options DENY;
};
server {
  %inline(%hardening);
}
`, nil)

	if len(cfg.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(cfg.Statements))
	}

	def, ok := cfg.Statements[0].(*TemplateDef)
	if !ok {
		t.Fatalf("statement is %T, want *TemplateDef", cfg.Statements[0])
	}

	if def.Name != "%hardening" {
		t.Errorf("template name = %q, want %%hardening", def.Name)
	}

	if len(def.Body.Children) != 1 {
		t.Fatalf("template body has %d children, want 1", len(def.Body.Children))
	}

	srv := cfg.Statements[1].(*Block)

	ref, ok := srv.Children[0].(*TemplateRef)
	if !ok {
		t.Fatalf("server child is %T, want *TemplateRef", srv.Children[0])
	}

	if ref.Name != "%hardening" {
		t.Errorf("ref name = %q, want %%hardening", ref.Name)
	}
}

func TestParser_Import(t *testing.T) {
	cfg := parse(t, `%import("common/tls.ngxs");`, nil)

	imp, ok := cfg.Statements[0].(*Import)
	if !ok {
		t.Fatalf("statement is %T, want *Import", cfg.Statements[0])
	}

	if imp.Path != "common/tls.ngxs" {
		t.Errorf("path = %q, want common/tls.ngxs", imp.Path)
	}
}

func TestParser_EnvResolution(t *testing.T) {
	tests := []struct {
		name  string
		input string
		env   map[string]string
		want  []string
	}{
		{
			name:  "set value",
			input: `listen %env("PORT");`,
			env:   map[string]string{"PORT": "9090"},
			want:  []string{"9090"},
		},
		{
			name:  "set value beats default",
			input: `listen %env("PORT", "8080");`,
			env:   map[string]string{"PORT": "9090"},
			want:  []string{"9090"},
		},
		{
			name:  "default used when unset",
			input: `listen %env("PORT", "8080");`,
			env:   nil,
			want:  []string{"8080"},
		},
		{
			name:  "empty value is still set",
			input: `listen %env("PORT", "8080");`,
			env:   map[string]string{"PORT": ""},
			want:  []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parse(t, tt.input, tt.env)

			dir := cfg.Statements[0].(*Directive)
			if !equalStrings(dir.Args, tt.want) {
				t.Errorf("args = %q, want %q", dir.Args, tt.want)
			}
		})
	}
}

func TestParser_EnvUnset(t *testing.T) {
	_, err := Parse(`listen %env("NO_SUCH_VAR_SET");`, WithLookup(MapLookup(nil)))
	if !errors.Is(err, ErrUnsetVariable) {
		t.Fatalf("error = %v, want ErrUnsetVariable", err)
	}
}

func TestParser_EnvDirectiveName(t *testing.T) {
	cfg := parse(t, `%env("NAME") on;`, map[string]string{"NAME": "gzip"})

	dir := cfg.Statements[0].(*Directive)
	if dir.Name != "gzip" {
		t.Errorf("name = %q, want gzip", dir.Name)
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "missing semicolon before next line",
			input: "listen 80\nserver_name example.com;",
			want:  ErrSyntax,
		},
		{
			name:  "missing semicolon before closing brace",
			input: "server { listen 80 }",
			want:  ErrSyntax,
		},
		{
			name:  "unclosed block",
			input: "server { listen 80;",
			want:  ErrSyntax,
		},
		{
			name:  "unbalanced closing brace",
			input: "listen 80; }",
			want:  ErrSyntax,
		},
		{
			name:  "template missing trailing semicolon",
			input: "%t = { gzip on; }",
			want:  ErrSyntax,
		},
		{
			name:  "inline of non-variable",
			input: "%inline(nope);",
			want:  ErrSyntax,
		},
		{
			name:  "import of non-string",
			input: "%import(common);",
			want:  ErrSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, WithLookup(MapLookup(nil)))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.want)
			}
		})
	}
}

func TestParser_StraySemicolons(t *testing.T) {
	cfg := parse(t, ";;gzip on;;", nil)

	if len(cfg.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(cfg.Statements))
	}
}

func TestParser_Empty(t *testing.T) {
	cfg := parse(t, "  \n# only a comment\n", nil)

	if len(cfg.Statements) != 0 {
		t.Fatalf("got %d statements, want 0", len(cfg.Statements))
	}
}
