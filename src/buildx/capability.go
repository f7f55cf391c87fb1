package buildx

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"
)

// Capabilities answers version-range queries against the two build tool
// subjects: the buildx CLI (frontend) and the BuildKit daemon behind a
// builder instance (backend).
type Capabilities interface {
	BuildxSatisfies(ctx context.Context, constraint string) (bool, error)
	BuildKitSatisfies(ctx context.Context, builder, constraint string) (bool, error)
}

var versionRe = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// CLICapabilities resolves versions by invoking the docker CLI once per
// subject and memoizing the result.
type CLICapabilities struct {
	mu           sync.Mutex
	buildxVer    *semver.Version
	buildkitVers map[string]*semver.Version

	// exec runs a docker subcommand and returns combined output.
	// Injectable for tests.
	exec func(ctx context.Context, args ...string) (string, error)
}

// NewCLICapabilities creates a docker-CLI-backed capability oracle.
func NewCLICapabilities() *CLICapabilities {
	return &CLICapabilities{
		buildkitVers: map[string]*semver.Version{},
		exec: func(ctx context.Context, args ...string) (string, error) {
			out, err := exec.CommandContext(ctx, "docker", args...).Output()
			if err != nil {
				return "", fmt.Errorf("docker %s: %w", strings.Join(args, " "), err)
			}
			return string(out), nil
		},
	}
}

// Prefetch warms both version subjects concurrently so argument assembly
// never blocks on process invocations mid-phase.
func (c *CLICapabilities) Prefetch(ctx context.Context, builder string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.buildxVersion(ctx)
		return err
	})
	g.Go(func() error {
		_, err := c.buildkitVersion(ctx, builder)
		return err
	})
	return g.Wait()
}

// BuildxSatisfies reports whether the buildx CLI version matches the range.
func (c *CLICapabilities) BuildxSatisfies(ctx context.Context, constraint string) (bool, error) {
	v, err := c.buildxVersion(ctx)
	if err != nil {
		return false, err
	}
	return satisfies(v, constraint)
}

// BuildKitSatisfies reports whether the BuildKit daemon behind the named
// builder matches the range. An empty builder uses the current one.
func (c *CLICapabilities) BuildKitSatisfies(ctx context.Context, builder, constraint string) (bool, error) {
	v, err := c.buildkitVersion(ctx, builder)
	if err != nil {
		return false, err
	}
	return satisfies(v, constraint)
}

// buildxVersion parses "docker buildx version" output, e.g.
// "github.com/docker/buildx v0.12.1 30feaa1".
func (c *CLICapabilities) buildxVersion(ctx context.Context) (*semver.Version, error) {
	c.mu.Lock()
	cached := c.buildxVer
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	out, err := c.exec(ctx, "buildx", "version")
	if err != nil {
		return nil, err
	}
	v, err := parseToolVersion(out)
	if err != nil {
		return nil, fmt.Errorf("buildx version: %w", err)
	}

	c.mu.Lock()
	c.buildxVer = v
	c.mu.Unlock()
	return v, nil
}

// buildkitVersion parses the "Buildkit:" line from "docker buildx inspect"
// output for the given builder.
func (c *CLICapabilities) buildkitVersion(ctx context.Context, builder string) (*semver.Version, error) {
	c.mu.Lock()
	cached := c.buildkitVers[builder]
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	args := []string{"buildx", "inspect", "--bootstrap"}
	if builder != "" {
		args = append(args, "--builder", builder)
	}
	out, err := c.exec(ctx, args...)
	if err != nil {
		return nil, err
	}

	var line string
	for _, l := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(strings.ToLower(trimmed), "buildkit") {
			line = trimmed
			break
		}
	}
	if line == "" {
		return nil, fmt.Errorf("buildx inspect: no BuildKit version in output")
	}
	v, err := parseToolVersion(line)
	if err != nil {
		return nil, fmt.Errorf("buildkit version: %w", err)
	}

	c.mu.Lock()
	c.buildkitVers[builder] = v
	c.mu.Unlock()
	return v, nil
}

// parseToolVersion extracts the first semver token from tool output.
func parseToolVersion(out string) (*semver.Version, error) {
	m := versionRe.FindStringSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("no version found in %q", strings.TrimSpace(out))
	}
	return semver.NewVersion(m[1])
}

// satisfies evaluates a range expression against a version.
func satisfies(v *semver.Version, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version range %q: %w", constraint, err)
	}
	return c.Check(v), nil
}
