// Package buildx translates declarative build inputs into a docker buildx
// build invocation: an ordered argument list, resolved side files, and a
// warning side channel for inputs ignored due to capability mismatch or
// failed secret resolution.
package buildx

import (
	"context"
	"fmt"
	"strings"

	"github.com/Patreos123/build-push-action/src/config"
)

// RepoContext is the repository-context collaborator: the default git build
// context, the workflow run URL, and repository visibility.
type RepoContext interface {
	DefaultGitContext() string
	WorkflowRunURL() string
	ExpandContext(raw string) string
	SameRepository(resolved string) bool
	RepoIsPrivate(ctx context.Context) bool
}

// Builder assembles buildx build argument lists. It holds no per-invocation
// state; Args can be called repeatedly and yields identical output for
// identical inputs and capability answers.
type Builder struct {
	Caps Capabilities
	Repo RepoContext
}

// Args assembles the complete token sequence for one build: the "build"
// subcommand, build-description flags, invocation control flags, and the
// resolved context as the final positional argument. Inputs skipped due to
// capability mismatch or per-entry resolution failure are reported through
// the returned warnings, never as errors.
func (b *Builder) Args(ctx context.Context, in *config.Inputs) (args, warnings []string, err error) {
	resolvedContext := b.Repo.ExpandContext(in.Context)

	args = []string{"build"}

	buildArgs, warnings, err := b.buildFlags(ctx, in, resolvedContext)
	if err != nil {
		return nil, warnings, err
	}
	args = append(args, buildArgs...)

	commonArgs, err := b.commonFlags(ctx, in)
	if err != nil {
		return nil, warnings, err
	}
	args = append(args, commonArgs...)

	args = append(args, resolvedContext)
	return args, warnings, nil
}

// buildFlags assembles the build-description flags. Flag ordering within
// this phase is a behavioral contract: downstream snapshot consumers depend
// on it, so the image-ID file decision stays interleaved between --file and
// --label rather than grouped with the other output controls.
func (b *Builder) buildFlags(ctx context.Context, in *config.Inputs, resolvedContext string) (args, warnings []string, err error) {
	for _, host := range in.AddHosts {
		args = append(args, "--add-host", host)
	}

	if len(in.Allow) > 0 {
		args = append(args, "--allow", strings.Join(in.Allow, ","))
	}

	if ok, err := b.Caps.BuildxSatisfies(ctx, ">=0.12.0"); err != nil {
		return nil, warnings, err
	} else if ok {
		for _, a := range in.Annotations {
			args = append(args, "--annotation", a)
		}
	} else if len(in.Annotations) > 0 {
		warnings = append(warnings, "annotations input ignored: buildx >= 0.12.0 required")
	}

	for _, arg := range in.BuildArgs {
		args = append(args, "--build-arg", arg)
	}

	if ok, err := b.Caps.BuildxSatisfies(ctx, ">=0.8.0"); err != nil {
		return nil, warnings, err
	} else if ok {
		for _, bc := range in.BuildContexts {
			args = append(args, "--build-context", bc)
		}
	} else if len(in.BuildContexts) > 0 {
		warnings = append(warnings, "build-contexts input ignored: buildx >= 0.8.0 required")
	}

	for _, cf := range in.CacheFrom {
		args = append(args, "--cache-from", cf)
	}
	for _, ct := range in.CacheTo {
		args = append(args, "--cache-to", ct)
	}

	if in.CgroupParent != "" {
		args = append(args, "--cgroup-parent", in.CgroupParent)
	}

	for _, spec := range in.SecretEnvs {
		res, rerr := ResolveSecretEnv(spec)
		if rerr != nil {
			warnings = append(warnings, fmt.Sprintf("skipping secret: %v", rerr))
			continue
		}
		args = append(args, "--secret", res)
	}

	if in.File != "" {
		args = append(args, "--file", in.File)
	}

	// An image-ID file only makes sense when the build produces an image:
	// local and tar exporters leave nothing to identify. Multi-platform
	// builds additionally need buildx >= 0.4.2 to write one.
	if !hasLocalExporter(in.Outputs) && !hasTarExporter(in.Outputs) {
		eligible := len(in.Platforms) == 0
		if !eligible {
			ok, err := b.Caps.BuildxSatisfies(ctx, ">=0.4.2")
			if err != nil {
				return nil, warnings, err
			}
			eligible = ok
		}
		if eligible {
			args = append(args, "--iidfile", ImageIDFilePath())
		}
	}

	for _, label := range in.Labels {
		args = append(args, "--label", label)
	}

	for _, ncf := range in.NoCacheFilters {
		args = append(args, "--no-cache-filter", ncf)
	}

	for _, out := range in.Outputs {
		args = append(args, "--output", out)
	}

	if len(in.Platforms) > 0 {
		args = append(args, "--platform", strings.Join(in.Platforms, ","))
	}

	if ok, err := b.Caps.BuildKitSatisfies(ctx, in.Builder, ">=0.10.0"); err != nil {
		return nil, warnings, err
	} else if ok {
		defaultOK, err := b.Caps.BuildKitSatisfies(ctx, in.Builder, ">=0.11.0")
		if err != nil {
			return nil, warnings, err
		}
		args = append(args, b.attestArgs(ctx, in, defaultOK)...)
	} else if len(in.Attests) > 0 || in.Provenance != "" || in.Sbom != "" {
		warnings = append(warnings, "attests, provenance and sbom inputs ignored: BuildKit >= 0.10.0 required")
	}

	for _, spec := range in.Secrets {
		res, rerr := ResolveSecretString(spec)
		if rerr != nil {
			warnings = append(warnings, fmt.Sprintf("skipping secret: %v", rerr))
			continue
		}
		args = append(args, "--secret", res)
	}
	for _, spec := range in.SecretFiles {
		res, rerr := ResolveSecretFile(spec)
		if rerr != nil {
			warnings = append(warnings, fmt.Sprintf("skipping secret: %v", rerr))
			continue
		}
		args = append(args, "--secret", res)
	}

	// Same-repo git contexts need credentials to fetch; synthesize the git
	// auth token secret unless the user already supplied one.
	if in.GitHubToken != "" && !HasGitAuthTokenSecret(in.Secrets) && b.Repo.SameRepository(resolvedContext) {
		res, rerr := ResolveSecretString(gitAuthTokenID + "=" + in.GitHubToken)
		if rerr != nil {
			warnings = append(warnings, fmt.Sprintf("skipping git auth token secret: %v", rerr))
		} else {
			args = append(args, "--secret", res)
		}
	}

	if in.ShmSize != "" {
		args = append(args, "--shm-size", in.ShmSize)
	}
	for _, ssh := range in.SSH {
		args = append(args, "--ssh", ssh)
	}
	for _, tag := range in.Tags {
		args = append(args, "--tag", tag)
	}
	if in.Target != "" {
		args = append(args, "--target", in.Target)
	}
	for _, ulimit := range in.Ulimits {
		args = append(args, "--ulimit", ulimit)
	}

	return args, warnings, nil
}

// commonFlags assembles the invocation control flags, positioned after the
// build-description flags as a separate logical group.
func (b *Builder) commonFlags(ctx context.Context, in *config.Inputs) ([]string, error) {
	var args []string

	if in.Builder != "" {
		args = append(args, "--builder", in.Builder)
	}
	if in.Load {
		args = append(args, "--load")
	}

	if ok, err := b.Caps.BuildxSatisfies(ctx, ">=0.6.0"); err != nil {
		return nil, err
	} else if ok {
		args = append(args, "--metadata-file", MetadataFilePath())
	}

	if in.Network != "" {
		args = append(args, "--network", in.Network)
	}
	if in.NoCache {
		args = append(args, "--no-cache")
	}
	if in.Pull {
		args = append(args, "--pull")
	}
	if in.Push {
		args = append(args, "--push")
	}

	return args, nil
}
