// Package github resolves the repository context a build runs in: the
// default git build context, the workflow run URL, and repository metadata.
// Values come from the GITHUB_* environment when present (Actions runners),
// falling back to introspection of the local git repository.
package github

import (
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// DefaultContextPlaceholder is the one template variable recognized in a
// raw build context value. It expands to the default git context.
const DefaultContextPlaceholder = "{{defaultContext}}"

// Context holds resolved repository metadata.
type Context struct {
	ServerURL  string // e.g. "https://github.com"
	APIURL     string // e.g. "https://api.github.com"
	Repository string // "owner/repo"
	Ref        string // "refs/heads/main" or "refs/tags/v1.0.0"
	RunID      string // workflow run ID, empty outside Actions
	Token      string
}

// FromEnv resolves the context from GITHUB_* environment variables, filling
// gaps from the git repository at rootDir. Missing values stay empty; every
// consumer treats empty as "unknown".
func FromEnv(rootDir string) *Context {
	c := &Context{
		ServerURL:  os.Getenv("GITHUB_SERVER_URL"),
		APIURL:     os.Getenv("GITHUB_API_URL"),
		Repository: os.Getenv("GITHUB_REPOSITORY"),
		Ref:        os.Getenv("GITHUB_REF"),
		RunID:      os.Getenv("GITHUB_RUN_ID"),
		Token:      os.Getenv("GITHUB_TOKEN"),
	}
	if c.Token == "" {
		c.Token = os.Getenv("GH_TOKEN")
	}

	if c.Repository == "" || c.Ref == "" {
		fillFromGit(c, rootDir)
	}

	if c.ServerURL == "" {
		c.ServerURL = "https://github.com"
	}
	if c.APIURL == "" {
		c.APIURL = "https://api.github.com"
	}
	return c
}

// fillFromGit fills Repository and Ref from the repo's origin remote and HEAD.
func fillFromGit(c *Context, rootDir string) {
	repo, err := git.PlainOpen(rootDir)
	if err != nil {
		return
	}

	if c.Repository == "" {
		remote, err := repo.Remote("origin")
		if err == nil && len(remote.Config().URLs) > 0 {
			server, ownerRepo := parseRemote(remote.Config().URLs[0])
			c.Repository = ownerRepo
			if c.ServerURL == "" {
				c.ServerURL = server
			}
		}
	}

	if c.Ref == "" {
		head, err := repo.Head()
		if err == nil {
			c.Ref = head.Name().String()
		}
	}
}

// parseRemote extracts the server URL and "owner/repo" from a git remote.
// Handles SSH (git@host:owner/repo.git) and HTTPS (https://host/owner/repo.git).
func parseRemote(remote string) (server, ownerRepo string) {
	remote = strings.TrimSuffix(remote, ".git")

	if strings.HasPrefix(remote, "https://") || strings.HasPrefix(remote, "http://") {
		rest := remote[strings.Index(remote, "://")+3:]
		if idx := strings.Index(rest, "/"); idx != -1 {
			return remote[:strings.Index(remote, "://")+3] + rest[:idx], rest[idx+1:]
		}
		return remote, ""
	}

	// SSH: git@host:owner/repo
	if at := strings.Index(remote, "@"); at != -1 {
		rest := remote[at+1:]
		if colon := strings.Index(rest, ":"); colon != -1 {
			return "https://" + rest[:colon], rest[colon+1:]
		}
	}
	return "", ""
}

// DefaultGitContext returns the default source-control build context:
// "<server>/<owner>/<repo>.git#<ref>". Empty when the repository is unknown.
func (c *Context) DefaultGitContext() string {
	if c.Repository == "" {
		return ""
	}
	s := strings.TrimRight(c.ServerURL, "/") + "/" + c.Repository + ".git"
	if c.Ref != "" {
		s += "#" + c.Ref
	}
	return s
}

// WorkflowRunURL returns the URL of the current workflow run, or "" outside
// a workflow.
func (c *Context) WorkflowRunURL() string {
	if c.Repository == "" || c.RunID == "" {
		return ""
	}
	return strings.TrimRight(c.ServerURL, "/") + "/" + c.Repository + "/actions/runs/" + c.RunID
}

// ExpandContext resolves a raw build context value. An empty value and the
// {{defaultContext}} placeholder both resolve to the default git context;
// the placeholder may carry a suffix (e.g. "{{defaultContext}}:subdir").
func (c *Context) ExpandContext(raw string) string {
	if raw == "" {
		return c.DefaultGitContext()
	}
	return strings.ReplaceAll(raw, DefaultContextPlaceholder, c.DefaultGitContext())
}

// SameRepository reports whether a resolved build context points at this
// repository's default git context.
func (c *Context) SameRepository(resolved string) bool {
	def := c.DefaultGitContext()
	return def != "" && strings.HasPrefix(resolved, def)
}
