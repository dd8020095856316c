package installer

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ManifestFileName is the lockfile written next to installed skills
const ManifestFileName = "skills.lock.yaml"

// ManifestEntry records where an installed skill came from
type ManifestEntry struct {
	Source      string    `yaml:"source"`
	Ref         string    `yaml:"ref,omitempty"`
	InstalledAt time.Time `yaml:"installedAt"`
}

// Manifest maps installed skill names to their provenance
type Manifest struct {
	Skills map[string]ManifestEntry `yaml:"skills"`
}

// LoadManifest reads the manifest from a skills directory. A missing
// manifest yields an empty one.
func LoadManifest(skillsDir string) (*Manifest, error) {
	manifest := &Manifest{Skills: make(map[string]ManifestEntry)}

	data, err := os.ReadFile(filepath.Join(skillsDir, ManifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return manifest, nil
		}
		return nil, errors.Wrap(err, "failed to read manifest")
	}

	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	if manifest.Skills == nil {
		manifest.Skills = make(map[string]ManifestEntry)
	}

	return manifest, nil
}

// Record adds or replaces the entry for a skill
func (m *Manifest) Record(name, source, ref string) {
	m.Skills[name] = ManifestEntry{
		Source:      source,
		Ref:         ref,
		InstalledAt: time.Now().UTC(),
	}
}

// Forget drops the entry for a skill, reporting whether it existed
func (m *Manifest) Forget(name string) bool {
	if _, ok := m.Skills[name]; !ok {
		return false
	}
	delete(m.Skills, name)
	return true
}

// Save writes the manifest into a skills directory
func (m *Manifest) Save(skillsDir string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest")
	}

	if err := os.WriteFile(filepath.Join(skillsDir, ManifestFileName), data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write manifest")
	}
	return nil
}
