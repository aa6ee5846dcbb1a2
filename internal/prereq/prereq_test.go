package prereq

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func pass(id string) Requirement {
	return Requirement{ID: id, Check: func(ctx context.Context) error { return nil }}
}

func fail(id, reason string) Requirement {
	return Requirement{
		ID:    id,
		Check: func(ctx context.Context) error { return errors.New(reason) },
		Hint:  "fix " + id,
	}
}

func TestCheckAllSatisfied(t *testing.T) {
	if f := Check(context.Background(), []Requirement{pass("a"), pass("b")}); f != nil {
		t.Errorf("Check() = %v, want nil", f)
	}
}

func TestCheckNamesFirstFailure(t *testing.T) {
	evaluated := []string{}
	record := func(id string, err error) Requirement {
		return Requirement{ID: id, Check: func(ctx context.Context) error {
			evaluated = append(evaluated, id)
			return err
		}}
	}

	reqs := []Requirement{
		record("tool-present", nil),
		record("authenticated", errors.New("no active session")),
		record("manifest-exists", nil),
	}

	f := Check(context.Background(), reqs)
	if f == nil {
		t.Fatal("Check() = nil, want failure")
	}
	if f.ID != "authenticated" {
		t.Errorf("failing requirement = %q, want authenticated", f.ID)
	}
	if f.Reason != "no active session" {
		t.Errorf("reason = %q", f.Reason)
	}
	// Short-circuit: the third requirement must never run.
	if len(evaluated) != 2 {
		t.Errorf("evaluated %v, want short-circuit after the failure", evaluated)
	}
}

func TestToolPresent(t *testing.T) {
	if f := Check(context.Background(), []Requirement{ToolPresent("sh", "sh", "")}); f != nil {
		t.Errorf("sh should be present: %v", f)
	}
	f := Check(context.Background(), []Requirement{ToolPresent("nope", "definitely-not-a-real-tool", "install it")})
	if f == nil {
		t.Fatal("expected failure for missing tool")
	}
	if f.Hint != "install it" {
		t.Errorf("hint = %q", f.Hint)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta.yaml")
	if err := os.WriteFile(path, []byte("package:\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if f := Check(context.Background(), []Requirement{FileExists("manifest", path, "")}); f != nil {
		t.Errorf("Check() = %v, want nil", f)
	}
	if f := Check(context.Background(), []Requirement{FileExists("manifest", filepath.Join(dir, "missing"), "")}); f == nil {
		t.Error("expected failure for missing file")
	}
	if f := Check(context.Background(), []Requirement{FileExists("manifest", dir, "")}); f == nil {
		t.Error("expected failure for directory")
	}
}
