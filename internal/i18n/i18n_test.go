package i18n

import (
	"os"
	"path/filepath"
	"testing"

	logx "dexsignal/pkg/logx"
)

func TestEmbeddedLookupAndFallback(t *testing.T) {
	t.Parallel()
	tr, err := New(logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := tr.T("en", "liquidity"); got != "Liquidity" {
		t.Fatalf("T(en, liquidity) = %q", got)
	}
	if got := tr.T("es", "liquidity"); got != "Liquidez" {
		t.Fatalf("T(es, liquidity) = %q", got)
	}
	// Unknown language falls back to English.
	if got := tr.T("fi", "liquidity"); got != "Liquidity" {
		t.Fatalf("T(fi, liquidity) = %q", got)
	}
	// Blank language defaults to English.
	if got := tr.T("", "liquidity"); got != "Liquidity" {
		t.Fatalf("T(\"\", liquidity) = %q", got)
	}
	// A missing key degrades to empty, never panics.
	if got := tr.T("en", "definitely_not_a_key"); got != "" {
		t.Fatalf("missing key = %q, want empty", got)
	}
}

func TestTfSubstitution(t *testing.T) {
	t.Parallel()
	tr, err := New(logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := tr.Tf("en", "rally_message", map[string]string{"percent": "50%"})
	if got != "Rallied 50% since first signal!" {
		t.Fatalf("Tf = %q", got)
	}
}

func TestLoadDirOverride(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.yaml"), []byte("liquidity: Liq\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tr, err := New(logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tr.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if got := tr.T("en", "liquidity"); got != "Liq" {
		t.Fatalf("override not applied, got %q", got)
	}
	// Languages not present in the dir keep their embedded bundle.
	if got := tr.T("es", "liquidity"); got != "Liquidez" {
		t.Fatalf("es bundle lost: %q", got)
	}
}
