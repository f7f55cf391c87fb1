package buildx

import (
	"context"
	"strings"

	"github.com/Patreos123/build-push-action/src/config"
)

// attestType extracts the "type" attribute from an attestation spec like
// "type=provenance,mode=min".
func attestType(spec string) string {
	for _, attr := range strings.Split(spec, ",") {
		attr = strings.TrimSpace(attr)
		if v, ok := strings.CutPrefix(attr, "type="); ok {
			return v
		}
	}
	return ""
}

// resolveAttestationAttrs normalizes a generic attestation spec: attributes
// are trimmed and empty segments dropped, order preserved.
func resolveAttestationAttrs(spec string) string {
	var attrs []string
	for _, attr := range strings.Split(spec, ",") {
		attr = strings.TrimSpace(attr)
		if attr != "" {
			attrs = append(attrs, attr)
		}
	}
	return strings.Join(attrs, ",")
}

// resolveProvenanceAttrs resolves a provenance attribute string into a full
// "type=provenance,..." spec. Boolean shorthands normalize to buildx
// semantics ("true" is max mode), and a builder-id attribute pointing at
// the workflow run is appended when one is known.
func resolveProvenanceAttrs(attrs, runURL string) string {
	attrs = strings.TrimPrefix(resolveAttestationAttrs(attrs), "type=provenance")
	attrs = strings.TrimPrefix(attrs, ",")

	switch attrs {
	case "true", "":
		attrs = "mode=max"
	case "false":
		attrs = "disabled=true"
	}

	if runURL != "" && !strings.Contains(attrs, "builder-id=") {
		attrs += ",builder-id=" + runURL
	}
	return "type=provenance," + attrs
}

// resolveSbomAttrs resolves an sbom attribute string into a full
// "type=sbom,..." spec. "true" requests the default generator with no extra
// attributes; "false" disables the attestation and emits nothing (a bare
// boolean attribute is not valid buildx attest grammar).
func resolveSbomAttrs(attrs string) (spec string, emit bool) {
	attrs = strings.TrimPrefix(resolveAttestationAttrs(attrs), "type=sbom")
	attrs = strings.TrimPrefix(attrs, ",")

	switch attrs {
	case "true", "":
		return "type=sbom", true
	case "false":
		return "", false
	}
	return "type=sbom," + attrs, true
}

// attestArgs resolves the three attestation inputs (provenance, sbom, and
// the generic attests list) into --attest flags. Explicit single-value
// inputs win over same-typed entries in the generic list; each type is
// emitted at most once. defaultOK gates the injected default provenance
// (BuildKit >= 0.11.0).
func (b *Builder) attestArgs(ctx context.Context, in *config.Inputs, defaultOK bool) []string {
	var args []string

	hasProvenanceEntry := false
	for _, a := range in.Attests {
		if attestType(a) == "provenance" {
			hasProvenanceEntry = true
			break
		}
	}

	runURL := b.Repo.WorkflowRunURL()

	provenanceSet := false
	sbomSet := false

	if in.Provenance != "" {
		args = append(args, "--attest", resolveProvenanceAttrs(in.Provenance, runURL))
		provenanceSet = true
	} else if !hasProvenanceEntry && defaultOK && !hasDockerExporter(in.Outputs, in.Load) {
		// No provenance requested anywhere and the image leaves the daemon:
		// inject the default attestation. Private repos keep attestations
		// inline and minimal.
		if b.Repo.RepoIsPrivate(ctx) {
			args = append(args, "--attest", "type=provenance,mode=min,inline-only=true")
		} else {
			args = append(args, "--attest", resolveProvenanceAttrs("mode=max", runURL))
		}
	}

	if in.Sbom != "" {
		if spec, emit := resolveSbomAttrs(in.Sbom); emit {
			args = append(args, "--attest", spec)
		}
		// Explicit sbom input wins even when it disables the attestation:
		// same-typed entries in the generic list stay suppressed.
		sbomSet = true
	}

	for _, a := range in.Attests {
		switch attestType(a) {
		case "provenance":
			if !provenanceSet {
				args = append(args, "--attest", resolveProvenanceAttrs(a, runURL))
			}
		case "sbom":
			if !sbomSet {
				args = append(args, "--attest", resolveAttestationAttrs(a))
			}
		default:
			args = append(args, "--attest", resolveAttestationAttrs(a))
		}
	}

	return args
}
