package buildx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveSecretString(t *testing.T) {
	t.Setenv("BUILDPUSH_STATE", t.TempDir())

	res, err := ResolveSecretString("API_TOKEN=s3cret=with=equals")
	if err != nil {
		t.Fatalf("ResolveSecretString: %v", err)
	}

	if !strings.HasPrefix(res, "id=API_TOKEN,src=") {
		t.Fatalf("resolved = %q", res)
	}
	path := strings.TrimPrefix(res, "id=API_TOKEN,src=")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading materialized secret: %v", err)
	}
	if string(data) != "s3cret=with=equals" {
		t.Errorf("secret content = %q", data)
	}
}

func TestResolveSecretStringInvalid(t *testing.T) {
	t.Setenv("BUILDPUSH_STATE", t.TempDir())

	for _, spec := range []string{"", "=value", "novalue", "EMPTY="} {
		if _, err := ResolveSecretString(spec); err == nil {
			t.Errorf("ResolveSecretString(%q): expected error", spec)
		}
	}
}

func TestResolveSecretStringErrorRedactsValue(t *testing.T) {
	t.Setenv("BUILDPUSH_STATE", t.TempDir())

	_, err := ResolveSecretString("novalue-hunter2")
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Errorf("error leaks secret material: %v", err)
	}
}

func TestResolveSecretEnv(t *testing.T) {
	t.Setenv("BUILDPUSH_TEST_TOKEN", "abc")

	res, err := ResolveSecretEnv("TOKEN=BUILDPUSH_TEST_TOKEN")
	if err != nil {
		t.Fatalf("ResolveSecretEnv: %v", err)
	}
	if res != "id=TOKEN,env=BUILDPUSH_TEST_TOKEN" {
		t.Errorf("resolved = %q", res)
	}

	if _, err := ResolveSecretEnv("TOKEN=BUILDPUSH_TEST_MISSING"); err == nil {
		t.Error("expected error for unset environment variable")
	}
}

func TestResolveSecretFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := ResolveSecretFile("TOKEN=" + path)
	if err != nil {
		t.Fatalf("ResolveSecretFile: %v", err)
	}
	if res != "id=TOKEN,src="+path {
		t.Errorf("resolved = %q", res)
	}

	if _, err := ResolveSecretFile("TOKEN=" + filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHasGitAuthTokenSecret(t *testing.T) {
	if !HasGitAuthTokenSecret([]string{"OTHER=x", "GIT_AUTH_TOKEN=tok"}) {
		t.Error("expected true when GIT_AUTH_TOKEN present")
	}
	if HasGitAuthTokenSecret([]string{"GIT_AUTH_TOKEN_X=tok"}) {
		t.Error("expected false for prefix-similar key")
	}
	if HasGitAuthTokenSecret(nil) {
		t.Error("expected false for empty list")
	}
}
