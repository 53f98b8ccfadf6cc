package role

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/haxroom/internal/color"
	"github.com/cory-johannsen/haxroom/internal/game/settings"
)

type roleFile struct {
	Roles []roleDef `yaml:"roles"`
}

type roleDef struct {
	Name     string         `yaml:"name"`
	Admin    bool           `yaml:"admin"`
	Override bool           `yaml:"override"`
	Position int            `yaml:"position"`
	Color    string         `yaml:"color"`
	Prefix   string         `yaml:"prefix"`
	Settings map[string]any `yaml:"settings"`
	Auths    []string       `yaml:"auths"`
}

// LoadFile reads role definitions from a YAML file.
//
// Postcondition: Returns roles keyed by name, or an error naming every invalid definition.
func LoadFile(path string) (map[string]*Role, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roles file %s: %w", path, err)
	}
	roles, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading roles file %s: %w", path, err)
	}
	return roles, nil
}

// LoadBytes parses YAML role definitions.
func LoadBytes(data []byte) (map[string]*Role, error) {
	var rf roleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing roles yaml: %w", err)
	}

	roles := make(map[string]*Role, len(rf.Roles))
	var errs []error
	for i, def := range rf.Roles {
		if def.Name == "" {
			errs = append(errs, fmt.Errorf("role %d: name must not be empty", i))
			continue
		}
		if _, dup := roles[def.Name]; dup {
			errs = append(errs, fmt.Errorf("role %q: duplicate name", def.Name))
			continue
		}
		r := &Role{
			Name:     def.Name,
			Admin:    def.Admin,
			Override: def.Override,
			Position: def.Position,
			Prefix:   def.Prefix,
			Settings: settings.New(),
			Auths:    def.Auths,
		}
		if def.Color != "" {
			c, err := color.Parse(def.Color)
			if err != nil {
				errs = append(errs, fmt.Errorf("role %q: %w", def.Name, err))
				continue
			}
			r.Color = &c
		}
		for k, v := range def.Settings {
			if err := r.Settings.Set(k, v); err != nil {
				errs = append(errs, fmt.Errorf("role %q: %w", def.Name, err))
			}
		}
		roles[def.Name] = r
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return roles, nil
}
