// Package config holds the file server configuration and loads it from disk.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/simpleserve-go/internal/listing"
)

// DefaultPort is the listening port used when none is configured.
const DefaultPort = 8000

// FileNames are the configuration files looked up in the working directory,
// in order of preference.
var FileNames = []string{"simpleserve.toml", "simpleserve.yaml", "simpleserve.yml"}

// Config controls the listener, the served tree and response rendering.
type Config struct {
	// Port is the TCP port to listen on, on all interfaces.
	Port int `toml:"port" yaml:"port"`
	// Root is the served directory. Empty means the directory containing the
	// running executable.
	Root string `toml:"root" yaml:"root"`
	// IndexFile names the file in the working directory that, when present,
	// is served for every request.
	IndexFile string `toml:"index_file" yaml:"index_file"`
	// ConfineToRoot rejects paths that resolve outside Root. Disabling it
	// restores plain concatenation of Root and the URL path.
	ConfineToRoot bool `toml:"confine_to_root" yaml:"confine_to_root"`
	// StrictMethods answers anything but GET with 405. When false every method
	// is served like GET.
	StrictMethods bool `toml:"strict_methods" yaml:"strict_methods"`
	// Timeout is the deadline for one connection cycle. Zero disables it.
	Timeout time.Duration `toml:"timeout" yaml:"timeout"`
	// Charset is the encoding of generated listings (WHATWG label).
	Charset string `toml:"charset" yaml:"charset"`
	// ListingFormat is "html" or "markdown".
	ListingFormat string `toml:"listing_format" yaml:"listing_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:          DefaultPort,
		IndexFile:     "index.html",
		ConfineToRoot: true,
		Timeout:       30 * time.Second,
		Charset:       "utf-8",
		ListingFormat: string(listing.FormatHTML),
	}
}

// Find returns the first of FileNames present in dir, or "" if none is.
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// Load reads path over the defaults. The format is chosen by extension.
// Keys that do not map to a Config field are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return cfg, fmt.Errorf("parse %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", c.Timeout)
	}
	if c.IndexFile == "" || strings.ContainsAny(c.IndexFile, `/\`) {
		return fmt.Errorf("index_file must be a plain file name, got %q", c.IndexFile)
	}
	format, err := listing.ParseFormat(c.ListingFormat)
	if err != nil {
		return err
	}
	if _, err := listing.NewRenderer(format, c.Charset); err != nil {
		return err
	}
	return nil
}

// ResolveRoot returns the absolute served directory.
func (c *Config) ResolveRoot() (string, error) {
	if c.Root != "" {
		return filepath.Abs(c.Root)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return filepath.Dir(exe), nil
}
