package cache

import "github.com/matzehuels/pubplot/pkg/buildinfo"

// Keyer generates cache keys.
type Keyer interface {
	// ArtifactKey identifies one encoded artifact of a chart.
	ArtifactKey(chart string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the inputs that determine an artifact's bytes.
type ArtifactKeyOpts struct {
	ConfigHash string `json:"config"` // effective configuration fingerprint
	DataHash   string `json:"data"`   // Hash of the dataset's canonical JSON
	Format     string `json:"format"`
	Policy     string `json:"policy,omitempty"`  // prerequisite policy; strict renders fail where lenient ones warn
	Version    string `json:"version,omitempty"` // defaults to the build version
}

// DefaultKeyer hashes the key inputs together with the build version, so a
// new release never serves artifacts drawn by an older one.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ArtifactKey(chart string, opts ArtifactKeyOpts) string {
	if opts.Version == "" {
		opts.Version = buildinfo.Version
	}
	return hashKey("artifact:"+chart, opts)
}
