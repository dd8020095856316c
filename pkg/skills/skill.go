// Package skills models agent skill bundles: directories containing a
// SKILL.md entry file with YAML frontmatter plus optional reference documents
// and scripts. It provides discovery across configured directories and
// frontmatter parsing.
package skills

import (
	"regexp"

	"github.com/invopop/jsonschema"
)

// Skill represents a discovered skill bundle
type Skill struct {
	Name        string   // Unique name from frontmatter
	Description string   // Brief description used for agent trigger-matching
	Version     string   // Optional version from frontmatter
	License     string   // Optional license from frontmatter
	Directory   string   // Full path to the skill directory
	Content     string   // Body of SKILL.md (frontmatter stripped)
	References  []string // Reference documents relative to the skill directory
	Scripts     []string // Script files relative to the skill directory
}

// Metadata represents the YAML frontmatter in SKILL.md files. Unknown keys
// are tolerated so third-party repositories can carry extra fields.
type Metadata struct {
	Name        string `mapstructure:"name" json:"name" jsonschema:"required,description=Unique kebab-case skill identifier"`
	Description string `mapstructure:"description" json:"description" jsonschema:"required,description=Short description used by agents to decide when to load the skill"`
	Version     string `mapstructure:"version" json:"version,omitempty" jsonschema:"description=Optional skill version"`
	License     string `mapstructure:"license" json:"license,omitempty" jsonschema:"description=Optional license identifier"`
}

var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// IsValidName reports whether name is a kebab-case skill identifier.
func IsValidName(name string) bool {
	return namePattern.MatchString(name)
}

// MetadataSchema returns the JSON schema for SKILL.md frontmatter.
func MetadataSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	return reflector.Reflect(&Metadata{})
}
