// SPDX-License-Identifier: GPL-2.0-or-later

package maps

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ConfigEnv is consulted when no config file is given.
const ConfigEnv = "HALFMAPPER_CONFIG"

var ErrFormat = errors.New("unknown campaign format")

// Decode parses a campaign. format is a file extension: yaml, yml or toml.
func Decode(data []byte, format string) (*Campaign, error) {
	c := &Campaign{}
	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, c)
	case "toml":
		err = toml.Unmarshal(data, c)
	default:
		return nil, errors.Wrap(ErrFormat, format)
	}
	if err != nil {
		return nil, errors.Wrap(err, "campaign")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a campaign file. Without a path it tries $HALFMAPPER_CONFIG
// and falls back to the built in Half-Life campaign.
func Load(path string) (*Campaign, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
		if path == "" {
			return HalfLife(), nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return c, nil
}

// Validate rejects campaigns the loader cannot work with.
func (c *Campaign) Validate() error {
	seen := make(map[string]string)
	for _, ch := range c.Chapters {
		for _, m := range ch.Maps {
			if m.Name == "" {
				return errors.Errorf("chapter %q has a map without name", ch.Name)
			}
			if prev, ok := seen[m.Name]; ok {
				return errors.Errorf("map %s listed in %q and %q", m.Name, prev, ch.Name)
			}
			seen[m.Name] = ch.Name
		}
	}
	return nil
}

// Save writes the campaign in the format given by the file extension.
func (c *Campaign) Save(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		data, err = toml.Marshal(c)
	default:
		return errors.Wrap(ErrFormat, path)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
