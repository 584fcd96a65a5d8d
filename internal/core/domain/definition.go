package domain

import (
	"fmt"
	"io"
	"os"

	"github.com/distribution/reference"
	"gopkg.in/yaml.v3"
)

// ArtifactSlot declares one named artifact the service expects to be packed
// before the bundle can be saved.
type ArtifactSlot struct {
	Name      string `yaml:"name"`
	Framework string `yaml:"framework,omitempty"`
	Optional  bool   `yaml:"optional,omitempty"`
}

// ServiceDefinition is the service-wrapper declaration loaded from a YAML
// file: the bundle name, the artifact slots it carries and static labels.
type ServiceDefinition struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Slots       []ArtifactSlot    `yaml:"artifacts"`
	Labels      map[string]string `yaml:"labels,omitempty"`
}

// ParseDefinition decodes and validates a service definition.
func ParseDefinition(r io.Reader) (*ServiceDefinition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def ServiceDefinition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadDefinition reads a service definition from a YAML file.
func LoadDefinition(path string) (*ServiceDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open service definition: %w", err)
	}
	defer f.Close()
	return ParseDefinition(f)
}

func (d *ServiceDefinition) Validate() error {
	if d.Name == "" {
		return ErrInvalidBundleName
	}
	if _, err := reference.ParseNormalizedNamed(d.Name); err != nil {
		return fmt.Errorf("%w: invalid name %q: %v", ErrInvalidDefinition, d.Name, err)
	}
	if len(d.Slots) == 0 {
		return ErrNoArtifactSlots
	}

	seen := make(map[string]bool, len(d.Slots))
	for _, slot := range d.Slots {
		if slot.Name == "" {
			return fmt.Errorf("%w: artifact slot without a name", ErrInvalidDefinition)
		}
		if seen[slot.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateSlot, slot.Name)
		}
		seen[slot.Name] = true
		if err := ValidateFramework(slot.Framework); err != nil {
			return fmt.Errorf("%w: slot %q framework %q", err, slot.Name, slot.Framework)
		}
	}
	return nil
}

// Slot looks up a declared artifact slot by name.
func (d *ServiceDefinition) Slot(name string) (ArtifactSlot, bool) {
	for _, s := range d.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return ArtifactSlot{}, false
}
