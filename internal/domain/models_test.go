package domain

import "testing"

func TestFieldDisplay(t *testing.T) {
	if got := (Field{}).Display(); got != Placeholder {
		t.Fatalf("missing field rendered %q", got)
	}
	if got := Present("Example Domain").Display(); got != "Example Domain" {
		t.Fatalf("present field rendered %q", got)
	}
	if got := (Field{Value: "stale"}).Or("x"); got != "x" {
		t.Fatalf("not-found field leaked value %q", got)
	}
}
