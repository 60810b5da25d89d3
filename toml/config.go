// Package toml reads and writes symdex configuration files.
package toml

import (
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/symdex"
)

// LoadConfig reads the config file at path on top of the defaults.
// Unknown keys and invalid values return EINVALID.
func LoadConfig(path string) (*symdex.Config, error) {
	cfg := symdex.DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, symdex.Errorf(symdex.EINVALID, "config %s: %v", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig is like LoadConfig for config text.
func ParseConfig(text string) (*symdex.Config, error) {
	cfg := symdex.DefaultConfig()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, symdex.Errorf(symdex.EINVALID, "config: %v", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	return symdex.Errorf(symdex.EINVALID, "unknown config keys: %s", strings.Join(keys, ", "))
}

// WriteConfig encodes cfg as TOML.
func WriteConfig(w io.Writer, cfg *symdex.Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
