package users

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Users []User `yaml:"users"`
}

// LoadSeed decodes a YAML document of the form
//
//	users:
//	  - id: doctor-01
//	    name: Doctor 01
//	    email: doctor01@email.com
//	    type: doctor
//	    lanr: LANR-01
//
// Entries are normalized and checked. Missing or duplicate ids are rejected.
func LoadSeed(r io.Reader) ([]User, error) {
	var f seedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidSeed, err)
	}

	seen := make(map[string]struct{}, len(f.Users))
	out := make([]User, 0, len(f.Users))
	for i, u := range f.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("%w: users[%d]: missing id", ErrInvalidSeed, i)
		}
		if _, ok := seen[u.ID]; ok {
			return nil, fmt.Errorf("%w: users[%d]: duplicate id %q", ErrInvalidSeed, i, u.ID)
		}
		seen[u.ID] = struct{}{}

		d, err := prepare(u.Draft)
		if err != nil {
			return nil, fmt.Errorf("%w: users[%d]: %w", ErrInvalidSeed, i, err)
		}
		out = append(out, User{ID: u.ID, Draft: d})
	}
	return out, nil
}

// LoadSeedFile reads a seed document from path.
func LoadSeedFile(path string) ([]User, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}
