package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/ngxs-lang/ngxs/lang"
)

func TestDiagnose(t *testing.T) {
	src := "listen 80\nserver_name x;"

	_, err := lang.Parse(src, lang.WithLookup(lang.MapLookup(nil)))
	if err == nil {
		t.Fatal("expected syntax error")
	}

	out := diagnose("main.ngxs", src, err)

	for _, want := range []string{"error:", "main.ngxs:2:1", "server_name"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnostic missing %q:\n%s", want, out)
		}
	}
}

func TestDiagnoseWithoutPosition(t *testing.T) {
	out := diagnose("main.ngxs", "", errors.New("plain failure"))

	if !strings.Contains(out, "plain failure") {
		t.Errorf("diagnostic missing message: %q", out)
	}

	if strings.Contains(out, "-->") {
		t.Errorf("diagnostic shows location without a position: %q", out)
	}
}
