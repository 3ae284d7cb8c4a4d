package ui

import "testing"

func TestEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm-256color")
	if !Enabled() {
		t.Fatal("color should be enabled for a capable terminal")
	}

	t.Setenv("NO_COLOR", "1")
	if Enabled() {
		t.Fatal("NO_COLOR must disable color")
	}

	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	if Enabled() {
		t.Fatal("TERM=dumb must disable color")
	}
}

func TestStyledHonorsEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	plain := styled(Red)
	if got := plain.Render("boom"); got != "boom" {
		t.Fatalf("disabled style rendered %q, want plain text", got)
	}
}
