package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Patreos123/build-push-action/src/buildx"
	"github.com/Patreos123/build-push-action/src/github"
	"github.com/Patreos123/build-push-action/src/output"
)

var (
	bTags      []string
	bPlatforms []string
	bFile      string
	bBuilder   string
	bPush      bool
	bLoad      bool
	bDryRun    bool
	bEnvFile   string
)

var buildCmd = &cobra.Command{
	Use:   "build [context]",
	Short: "Assemble and run a docker buildx build",
	Long: `Assemble a docker buildx build invocation from config and run it.

Flags are version-gated against the detected buildx and BuildKit versions;
unsupported inputs are skipped with a warning. With --dry-run the assembled
argument list is printed instead of executed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringSliceVar(&bTags, "tag", nil, "override/add tags")
	buildCmd.Flags().StringSliceVar(&bPlatforms, "platform", nil, "override platforms (comma-separated)")
	buildCmd.Flags().StringVar(&bFile, "file", "", "override build definition file")
	buildCmd.Flags().StringVar(&bBuilder, "builder", "", "override builder instance")
	buildCmd.Flags().BoolVar(&bPush, "push", false, "push the result")
	buildCmd.Flags().BoolVar(&bLoad, "load", false, "load the result into the docker daemon")
	buildCmd.Flags().BoolVar(&bDryRun, "dry-run", false, "print the assembled invocation without executing")
	buildCmd.Flags().StringVar(&bEnvFile, "env-file", "", "dotenv file loaded before secret resolution")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	ctx := context.Background()
	color := output.UseColor()
	w := os.Stdout

	// Env file first: environment-backed secrets resolve against it.
	envFile := bEnvFile
	if envFile == "" {
		envFile = cfg.EnvFile
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	}

	inputs := cfg.Build

	// Apply CLI overrides
	if len(args) > 0 {
		inputs.Context = args[0]
	}
	if len(bTags) > 0 {
		inputs.Tags = append(inputs.Tags, bTags...)
	}
	if len(bPlatforms) > 0 {
		inputs.Platforms = bPlatforms
	}
	if bFile != "" {
		inputs.File = bFile
	}
	if bBuilder != "" {
		inputs.Builder = bBuilder
	}
	if bPush {
		inputs.Push = true
	}
	if bLoad {
		inputs.Load = true
	}
	if inputs.GitHubToken == "" {
		inputs.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}

	ghctx := github.FromEnv(rootDir)

	kvs := []output.KV{
		{Key: "Context", Value: ghctx.ExpandContext(inputs.Context)},
	}
	if len(inputs.Platforms) > 0 {
		kvs = append(kvs, output.KV{Key: "Platforms", Value: strings.Join(inputs.Platforms, ",")})
	}
	if len(inputs.Tags) > 0 {
		kvs = append(kvs, output.KV{Key: "Tags", Value: strings.Join(inputs.Tags, ", ")})
	}
	output.ContextBlock(w, kvs, color)

	caps := buildx.NewCLICapabilities()
	if err := caps.Prefetch(ctx, inputs.Builder); err != nil {
		return fmt.Errorf("detecting tool versions: %w", err)
	}

	if err := buildx.EnsureStateDir(); err != nil {
		return err
	}

	builder := &buildx.Builder{Caps: caps, Repo: ghctx}
	buildArgs, warnings, err := builder.Args(ctx, &inputs)
	if err != nil {
		return fmt.Errorf("assembling build arguments: %w", err)
	}
	output.Warnings(os.Stderr, warnings, color)

	if bDryRun {
		output.Command(w, "docker buildx", buildArgs, color)
		return nil
	}

	runner := buildx.NewRunner(verbose)
	if err := runner.EnsureBuilder(ctx, inputs.Builder); err != nil {
		return err
	}

	result, err := runner.Run(ctx, buildArgs)
	if err != nil {
		return err
	}

	if result.ImageID != "" {
		fmt.Fprintf(w, "\n    ImageID %s\n", result.ImageID)
	}
	if meta, err := buildx.ReadMetadata(); err == nil {
		if digest, ok := meta["containerimage.digest"].(string); ok && digest != "" {
			fmt.Fprintf(w, "    Digest  %s\n", digest)
		}
	}

	return nil
}
