package buildx

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner executes docker commands.
type Runner struct {
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewRunner creates a Runner with default output writers.
func NewRunner(verbose bool) *Runner {
	return &Runner{
		Verbose: verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Result captures the outcome of one build invocation.
type Result struct {
	Duration time.Duration
	ImageID  string
}

// Run executes an assembled buildx invocation and reads back the image-ID
// side file when the argument list requested one.
func (r *Runner) Run(ctx context.Context, args []string) (*Result, error) {
	start := time.Now()

	if r.Verbose {
		fmt.Fprintf(r.Stderr, "exec: docker buildx %s\n", strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, "docker", append([]string{"buildx"}, args...)...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("docker buildx build failed: %w", err)
	}

	result := &Result{Duration: time.Since(start)}
	if containsFlag(args, "--iidfile") {
		if id, err := ReadImageID(); err == nil {
			result.ImageID = id
		}
	}
	return result, nil
}

// EnsureBuilder checks that a buildx builder is available and creates one
// if needed.
func (r *Runner) EnsureBuilder(ctx context.Context, name string) error {
	inspect := []string{"buildx", "inspect"}
	if name != "" {
		inspect = append(inspect, "--builder", name)
	}
	cmd := exec.CommandContext(ctx, "docker", inspect...)
	if err := cmd.Run(); err != nil {
		if name == "" {
			name = "buildpush"
		}
		create := exec.CommandContext(ctx, "docker", "buildx", "create", "--use", "--name", name)
		create.Stdout = r.Stderr
		create.Stderr = r.Stderr
		if createErr := create.Run(); createErr != nil {
			return fmt.Errorf("creating buildx builder: %w", createErr)
		}
	}
	return nil
}

func containsFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}
