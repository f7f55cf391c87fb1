package github

import (
	"testing"
)

func actionsEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_SERVER_URL", "https://github.com")
	t.Setenv("GITHUB_API_URL", "https://api.github.com")
	t.Setenv("GITHUB_REPOSITORY", "org/repo")
	t.Setenv("GITHUB_REF", "refs/heads/main")
	t.Setenv("GITHUB_RUN_ID", "12345")
	t.Setenv("GITHUB_TOKEN", "ghs_token")
	t.Setenv("GH_TOKEN", "")
}

func TestFromEnv(t *testing.T) {
	actionsEnv(t)

	c := FromEnv(t.TempDir())
	if c.Repository != "org/repo" {
		t.Errorf("Repository = %q", c.Repository)
	}
	if c.Ref != "refs/heads/main" {
		t.Errorf("Ref = %q", c.Ref)
	}
	if c.Token != "ghs_token" {
		t.Errorf("Token = %q", c.Token)
	}
}

func TestDefaultGitContext(t *testing.T) {
	actionsEnv(t)

	c := FromEnv(t.TempDir())
	want := "https://github.com/org/repo.git#refs/heads/main"
	if got := c.DefaultGitContext(); got != want {
		t.Errorf("DefaultGitContext() = %q, want %q", got, want)
	}
}

func TestDefaultGitContextUnknownRepo(t *testing.T) {
	c := &Context{ServerURL: "https://github.com"}
	if got := c.DefaultGitContext(); got != "" {
		t.Errorf("DefaultGitContext() = %q, want empty", got)
	}
}

func TestWorkflowRunURL(t *testing.T) {
	actionsEnv(t)

	c := FromEnv(t.TempDir())
	want := "https://github.com/org/repo/actions/runs/12345"
	if got := c.WorkflowRunURL(); got != want {
		t.Errorf("WorkflowRunURL() = %q, want %q", got, want)
	}

	c.RunID = ""
	if got := c.WorkflowRunURL(); got != "" {
		t.Errorf("WorkflowRunURL() = %q, want empty outside a run", got)
	}
}

func TestExpandContext(t *testing.T) {
	actionsEnv(t)

	c := FromEnv(t.TempDir())
	def := c.DefaultGitContext()

	cases := []struct {
		raw  string
		want string
	}{
		{"", def},
		{"{{defaultContext}}", def},
		{"{{defaultContext}}:subdir", def + ":subdir"},
		{".", "."},
		{"https://github.com/other/repo.git", "https://github.com/other/repo.git"},
	}
	for _, tc := range cases {
		if got := c.ExpandContext(tc.raw); got != tc.want {
			t.Errorf("ExpandContext(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestSameRepository(t *testing.T) {
	actionsEnv(t)

	c := FromEnv(t.TempDir())
	def := c.DefaultGitContext()

	if !c.SameRepository(def) {
		t.Error("default context should match")
	}
	if !c.SameRepository(def + ":subdir") {
		t.Error("subdir suffix should match")
	}
	if c.SameRepository("https://github.com/other/repo.git#refs/heads/main") {
		t.Error("foreign context should not match")
	}
	if c.SameRepository(".") {
		t.Error("local path should not match")
	}
}

func TestParseRemote(t *testing.T) {
	cases := []struct {
		remote     string
		wantServer string
		wantRepo   string
	}{
		{"https://github.com/org/repo.git", "https://github.com", "org/repo"},
		{"https://github.com/org/repo", "https://github.com", "org/repo"},
		{"git@github.com:org/repo.git", "https://github.com", "org/repo"},
		{"git@ghes.example.com:org/repo.git", "https://ghes.example.com", "org/repo"},
	}
	for _, tc := range cases {
		server, repo := parseRemote(tc.remote)
		if server != tc.wantServer || repo != tc.wantRepo {
			t.Errorf("parseRemote(%q) = (%q, %q), want (%q, %q)",
				tc.remote, server, repo, tc.wantServer, tc.wantRepo)
		}
	}
}
