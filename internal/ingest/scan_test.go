package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func seedTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := []string{
		"jan.pdf",
		"feb.PDF",
		"notes.txt",
		".hidden.pdf",
		filepath.Join("2024", "mar.pdf"),
		filepath.Join(".cache", "apr.pdf"),
	}
	for _, f := range files {
		p := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestScanDirectory(t *testing.T) {
	root := seedTree(t)

	paths, stats, err := ScanDirectory(root, true)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %v", paths)
	}
	got := map[string]bool{}
	for _, p := range paths {
		got[filepath.Base(p)] = true
	}
	for _, want := range []string{"jan.pdf", "feb.PDF", "mar.pdf"} {
		if !got[want] {
			t.Errorf("missing %s in %v", want, paths)
		}
	}
	if got[".hidden.pdf"] || got["apr.pdf"] {
		t.Errorf("hidden entries leaked: %v", paths)
	}
	if stats.Matched != 3 {
		t.Errorf("Matched = %d", stats.Matched)
	}
}

func TestScanDirectory_HiddenIncludedWhenAllowed(t *testing.T) {
	root := seedTree(t)

	paths, _, err := ScanDirectory(root, false)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(paths) != 5 {
		t.Errorf("paths = %v", paths)
	}
}

func TestScanDirectory_EmptyRootArg(t *testing.T) {
	if _, _, err := ScanDirectory("  ", true); err == nil {
		t.Fatal("expected error for blank root")
	}
}

func TestScanDirectory_NoMatches(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "readme.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	paths, stats, err := ScanDirectory(root, true)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(paths) != 0 || stats.Matched != 0 {
		t.Errorf("paths = %v, stats = %+v", paths, stats)
	}
}
