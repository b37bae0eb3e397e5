package config

// TargetDTO represents one target record in the build specification.
type TargetDTO struct {
	Source   string   `json:"source" yaml:"source"`
	Args     []string `json:"args" yaml:"args"`
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`
}

// Specfile is the on-disk build specification: a mapping from target name
// to its record. The target name doubles as the target's stable identity.
type Specfile map[string]TargetDTO
