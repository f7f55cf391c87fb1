package config

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// List is a string list that also accepts a scalar form, split on newlines
// and commas:
//
//	platforms: linux/amd64,linux/arm64
//	platforms:
//	  - linux/amd64
//	  - linux/arm64
type List []string

// RawList is like List but splits scalars on newlines only. Used for fields
// whose values legally contain commas (outputs, cache specs, annotations,
// attestations, secrets).
type RawList []string

// UnmarshalYAML implements custom unmarshaling for the scalar-or-sequence form.
func (l *List) UnmarshalYAML(value *yaml.Node) error {
	items, err := decodeListNode(value, true)
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// UnmarshalYAML implements custom unmarshaling for the scalar-or-sequence form.
func (l *RawList) UnmarshalYAML(value *yaml.Node) error {
	items, err := decodeListNode(value, false)
	if err != nil {
		return err
	}
	*l = items
	return nil
}

func decodeListNode(value *yaml.Node, splitComma bool) ([]string, error) {
	if value.Kind == yaml.ScalarNode {
		return splitListValue(value.Value, splitComma), nil
	}
	var items []string
	if err := value.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// splitListValue splits a scalar list value on newlines and, optionally,
// commas. Empty segments are dropped.
func splitListValue(s string, splitComma bool) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		segs := []string{line}
		if splitComma {
			segs = strings.Split(line, ",")
		}
		for _, seg := range segs {
			seg = strings.TrimSpace(seg)
			if seg != "" {
				out = append(out, seg)
			}
		}
	}
	return out
}

// Inputs is the declarative description of a single buildx build invocation.
// Field semantics mirror the buildx build flag grammar; empty fields emit
// no flags.
type Inputs struct {
	AddHosts       List    `yaml:"add-hosts"`
	Allow          List    `yaml:"allow"`
	Annotations    RawList `yaml:"annotations"`
	Attests        RawList `yaml:"attests"`
	BuildArgs      RawList `yaml:"build-args"`
	BuildContexts  RawList `yaml:"build-contexts"`
	Builder        string  `yaml:"builder"`
	CacheFrom      RawList `yaml:"cache-from"`
	CacheTo        RawList `yaml:"cache-to"`
	CgroupParent   string  `yaml:"cgroup-parent"`
	Context        string  `yaml:"context"`
	File           string  `yaml:"file"`
	GitHubToken    string  `yaml:"github-token"`
	Labels         RawList `yaml:"labels"`
	Load           bool    `yaml:"load"`
	Network        string  `yaml:"network"`
	NoCache        bool    `yaml:"no-cache"`
	NoCacheFilters List    `yaml:"no-cache-filters"`
	Outputs        RawList `yaml:"outputs"`
	Platforms      List    `yaml:"platforms"`
	Provenance     string  `yaml:"provenance"`
	Pull           bool    `yaml:"pull"`
	Push           bool    `yaml:"push"`
	Sbom           string  `yaml:"sbom"`
	SecretEnvs     RawList `yaml:"secret-envs"`
	SecretFiles    RawList `yaml:"secret-files"`
	Secrets        RawList `yaml:"secrets"`
	ShmSize        string  `yaml:"shm-size"`
	SSH            RawList `yaml:"ssh"`
	Tags           List    `yaml:"tags"`
	Target         string  `yaml:"target"`
	Ulimits        RawList `yaml:"ulimits"`
}
