package index

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FileInfo is the §4.4 "info.toml" sidecar's on-disk filename.
const FileInfo = "info.toml"

// Info records the build-time parameters needed at classify time, paired
// with the §6.1 byte-size consistency check.
type Info struct {
	MainVersion uint8 `toml:"main-version" comment:"index format"`
	K           int   `toml:"k"`
	Deletative  bool  `toml:"deletative"`
	Reassemble  bool  `toml:"reassemble"`
	Workers     int   `toml:"workers"`
}

// WriteInfo marshals info to path in TOML form, grounded on LexicMap's
// writeIndexInfo (toml.Marshal over a struct of build parameters, written
// whole rather than streamed since it's a handful of scalar fields).
func WriteInfo(path string, info *Info) error {
	data, err := toml.Marshal(info)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadInfo is the inverse of WriteInfo. Build uses it to skip rewriting an
// unchanged info.toml; classify does not read it.
func ReadInfo(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info := &Info{}
	if err := toml.Unmarshal(data, info); err != nil {
		return nil, err
	}
	return info, nil
}
