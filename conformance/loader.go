// Package conformance runs YAML suites of expressions against an evaluator.
package conformance

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/chazu/stackcalc/calc"
)

// LoadFile parses a single YAML suite.
func LoadFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	suite.File = path
	if suite.Name == "" {
		suite.Name = filepath.Base(path)
	}

	if err := suite.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &suite, nil
}

// LoadDir loads every .yaml file under dir, sorted by path.
func LoadDir(dir string) ([]*Suite, error) {
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		// Only process .yaml files
		if info.IsDir() || (filepath.Ext(path) != ".yaml" && filepath.Ext(path) != ".yml") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	suites := make([]*Suite, 0, len(paths))
	for _, path := range paths {
		s, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

func (s *Suite) validate() error {
	if len(s.Tests) == 0 {
		return fmt.Errorf("suite %q has no tests", s.Name)
	}
	for i, c := range s.Tests {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if (c.Want == nil) == (c.Error == "") {
			return fmt.Errorf("test %s: exactly one of want and error must be set", name)
		}
		if c.Error != "" {
			if _, err := calc.ParseKind(c.Error); err != nil {
				return fmt.Errorf("test %s: %w", name, err)
			}
		}
	}
	return nil
}
