package config

import (
	"encoding/json"
	"os"
)

// atomicWriter is the subset of fsutil.OSFileSystem needed to persist a config.
type atomicWriter interface {
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
}

// Save writes cfg as indented JSON to path, replacing any existing file.
func Save(w atomicWriter, path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return w.WriteFileAtomic(path, data, 0o644)
}
