package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLocateSingleMatch(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "alpaca_kernel_2-1.2.0-py_0.tar.bz2")

	a, err := Locate(root, "alpaca_kernel_2-*.tar.bz2")
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if filepath.Base(a.Path) != "alpaca_kernel_2-1.2.0-py_0.tar.bz2" {
		t.Errorf("path = %s", a.Path)
	}
	if a.Format != "tar.bz2" {
		t.Errorf("format = %q, want tar.bz2", a.Format)
	}
}

func TestLocatePicksLexicographicFirst(t *testing.T) {
	root := t.TempDir()
	// Written in non-sorted order; the result must not depend on it.
	writeFiles(t, root,
		"alpaca_kernel_2-1.10.0-py_0.tar.bz2",
		"alpaca_kernel_2-1.2.0-py_0.tar.bz2",
		"alpaca_kernel_2-1.2.0-py_1.tar.bz2",
	)

	for i := 0; i < 3; i++ {
		a, err := Locate(root, "alpaca_kernel_2-*.tar.bz2")
		if err != nil {
			t.Fatalf("Locate() error = %v", err)
		}
		if got := filepath.Base(a.Path); got != "alpaca_kernel_2-1.10.0-py_0.tar.bz2" {
			t.Errorf("call %d: picked %s, want lexicographically first", i, got)
		}
	}
}

func TestLocatePlatformSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, filepath.Join("linux-64", "alpaca_kernel_2-1.2.0-py_0.conda"))

	a, err := Locate(root, "*.conda")
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if a.Platform != "linux-64" {
		t.Errorf("platform = %q, want linux-64", a.Platform)
	}
	if a.Format != "conda" {
		t.Errorf("format = %q, want conda", a.Format)
	}
}

func TestLocateNotFound(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "unrelated.txt")

	_, err := Locate(root, "*.tar.bz2")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestLocateMissingRootMeansNothingBuilt(t *testing.T) {
	_, err := Locate(filepath.Join(t.TempDir(), "missing"), "*.tar.bz2")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for a not-yet-created output dir", err)
	}
}

func TestLocateInvalidRootIsNotNotFound(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Locate(root, "*.tar.bz2")
	if err == nil {
		t.Fatal("expected error for non-directory root")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("an invalid search root must not be reported as ErrNotFound")
	}
}

func TestLocateAll(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		filepath.Join("linux-64", "alpaca_kernel_2-1.2.0-py_0.tar.bz2"),
		filepath.Join("osx-64", "alpaca_kernel_2-1.2.0-py_0.tar.bz2"),
		filepath.Join("win-64", "alpaca_kernel_2-1.2.0-py_0.tar.bz2"),
	)

	arts, err := LocateAll(root, "*.tar.bz2")
	if err != nil {
		t.Fatalf("LocateAll() error = %v", err)
	}
	if len(arts) != 3 {
		t.Fatalf("got %d artifacts, want 3", len(arts))
	}
	platforms := []string{arts[0].Platform, arts[1].Platform, arts[2].Platform}
	want := []string{"linux-64", "osx-64", "win-64"}
	for i := range want {
		if platforms[i] != want[i] {
			t.Errorf("platforms = %v, want %v", platforms, want)
			break
		}
	}
}

func TestLocateAllEmptyIsNotFound(t *testing.T) {
	_, err := LocateAll(t.TempDir(), "*.whl")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
