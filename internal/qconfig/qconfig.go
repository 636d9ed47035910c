// Package qconfig loads the optional .quackc.yaml project file, grounded
// on the teacher's YAML-backed settings package (internal/ext's funxy.yaml
// Config), reworked to the much smaller set of knobs quackc itself takes.
// CLI flags always take precedence over a loaded file; qconfig only
// supplies defaults for flags the user left unset.
package qconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file's fixed name, searched for first next to
// the source file and then in the current working directory.
const FileName = ".quackc.yaml"

// Config is the optional project-wide defaults file.
type Config struct {
	MainClass string `yaml:"main-class,omitempty"`
	OutputDir string `yaml:"output-dir,omitempty"`
	ObjDir    string `yaml:"obj-dir,omitempty"`
	LogLevel  string `yaml:"log-level,omitempty"`
	CacheDir  string `yaml:"cache-dir,omitempty"`
}

// Load searches sourceDir then the working directory for .quackc.yaml and
// parses it. Returns a zero Config, no error, if neither location has one
// — an absent config file is not an error, per spec.md §7 (only compile
// errors and CLI usage errors are).
func Load(sourceDir string) (Config, error) {
	for _, dir := range candidateDirs(sourceDir) {
		path := filepath.Join(dir, FileName)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	return Config{}, nil
}

func candidateDirs(sourceDir string) []string {
	wd, err := os.Getwd()
	if err != nil || wd == sourceDir {
		return []string{sourceDir}
	}
	return []string{sourceDir, wd}
}

// Merge overlays any field left at its zero value in flags with the
// corresponding value from file, so a flag the user actually typed always
// wins.
func Merge(flags, file Config) Config {
	out := flags
	if out.MainClass == "" {
		out.MainClass = file.MainClass
	}
	if out.OutputDir == "" {
		out.OutputDir = file.OutputDir
	}
	if out.ObjDir == "" {
		out.ObjDir = file.ObjDir
	}
	if out.LogLevel == "" {
		out.LogLevel = file.LogLevel
	}
	if out.CacheDir == "" {
		out.CacheDir = file.CacheDir
	}
	return out
}
