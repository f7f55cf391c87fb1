package buildx

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestParseToolVersion(t *testing.T) {
	cases := []struct {
		out     string
		want    string
		wantErr bool
	}{
		{"github.com/docker/buildx v0.12.1 30feaa1", "0.12.1", false},
		{"Buildkit:  v0.11.6", "0.11.6", false},
		{"moby/buildkit v0.10.0-rc1", "0.10.0", false},
		{"no version here", "", true},
	}

	for _, tc := range cases {
		v, err := parseToolVersion(tc.out)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseToolVersion(%q): expected error", tc.out)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseToolVersion(%q): %v", tc.out, err)
			continue
		}
		if v.String() != tc.want {
			t.Errorf("parseToolVersion(%q) = %s, want %s", tc.out, v, tc.want)
		}
	}
}

func fakeExecCaps(t *testing.T, calls *atomic.Int32) *CLICapabilities {
	t.Helper()
	return &CLICapabilities{
		buildkitVers: map[string]*semver.Version{},
		exec: func(_ context.Context, args ...string) (string, error) {
			calls.Add(1)
			if args[1] == "version" {
				return "github.com/docker/buildx v0.12.1 30feaa1\n", nil
			}
			return strings.Join([]string{
				"Name:   default",
				"Driver: docker-container",
				"",
				"Nodes:",
				"Name:      default0",
				"Buildkit:  v0.11.6",
			}, "\n"), nil
		},
	}
}

func TestCLICapabilitiesSatisfies(t *testing.T) {
	var calls atomic.Int32
	caps := fakeExecCaps(t, &calls)
	ctx := context.Background()

	ok, err := caps.BuildxSatisfies(ctx, ">=0.12.0")
	if err != nil || !ok {
		t.Errorf("BuildxSatisfies(>=0.12.0) = %v, %v; want true", ok, err)
	}
	ok, err = caps.BuildxSatisfies(ctx, ">=0.13.0")
	if err != nil || ok {
		t.Errorf("BuildxSatisfies(>=0.13.0) = %v, %v; want false", ok, err)
	}

	ok, err = caps.BuildKitSatisfies(ctx, "", ">=0.11.0")
	if err != nil || !ok {
		t.Errorf("BuildKitSatisfies(>=0.11.0) = %v, %v; want true", ok, err)
	}

	// One exec per subject, memoized across queries.
	if got := calls.Load(); got != 2 {
		t.Errorf("exec calls = %d, want 2", got)
	}
}

func TestCLICapabilitiesPrefetch(t *testing.T) {
	var calls atomic.Int32
	caps := fakeExecCaps(t, &calls)
	ctx := context.Background()

	if err := caps.Prefetch(ctx, ""); err != nil {
		t.Fatalf("Prefetch: %v", err)
	}
	if _, err := caps.BuildxSatisfies(ctx, ">=0.6.0"); err != nil {
		t.Fatalf("BuildxSatisfies: %v", err)
	}
	if _, err := caps.BuildKitSatisfies(ctx, "", ">=0.10.0"); err != nil {
		t.Fatalf("BuildKitSatisfies: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("exec calls = %d, want 2", got)
	}
}

func TestCLICapabilitiesBadConstraint(t *testing.T) {
	var calls atomic.Int32
	caps := fakeExecCaps(t, &calls)

	if _, err := caps.BuildxSatisfies(context.Background(), "not-a-range!!"); err == nil {
		t.Error("expected error for invalid range expression")
	}
}
