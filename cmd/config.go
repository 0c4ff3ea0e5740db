package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-tiled-renderer/pkg/log"
	"github.com/df07/go-tiled-renderer/pkg/renderer"
)

// Config is the validated command line of a render invocation
type Config struct {
	Threads   int                // Render workers
	BlockSize int                // Tile edge length in pixels
	Traversal renderer.Traversal // Tile order
	NoGUI     bool               // Disable the progress preview
	ScenePath string             // Scene to render, empty when viewing an image
	ImagePath string             // Image to view, empty when rendering
	LogLevel  log.Level          // Verbosity selected with -v / -vv
}

// RenderFlags are the tuning flags of a render
type RenderFlags struct {
	Threads   int
	BlockSize int
	Traversal string
	NoGUI     bool
}

var (
	sceneExtensions = map[string]bool{".yaml": true, ".yml": true, ".toml": true}
	imageExtensions = map[string]bool{".hdr": true}
)

// NewConfig validates the command line. Exactly one scene or image must be
// given; an image can only be viewed with the preview enabled.
func NewConfig(flags RenderFlags, level log.Level, files []string) (Config, error) {
	cfg := Config{Threads: flags.Threads, BlockSize: flags.BlockSize, NoGUI: flags.NoGUI, LogLevel: level}
	if flags.Threads <= 0 {
		return cfg, fmt.Errorf("invalid number of threads %d", flags.Threads)
	}
	if flags.BlockSize <= 0 {
		return cfg, fmt.Errorf("invalid block size %d", flags.BlockSize)
	}
	traversal, err := renderer.ParseTraversal(flags.Traversal)
	if err != nil {
		return cfg, err
	}
	cfg.Traversal = traversal

	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file))
		switch {
		case sceneExtensions[ext]:
			if cfg.ScenePath != "" {
				return cfg, fmt.Errorf("only one scene file can be rendered at a time")
			}
			cfg.ScenePath = file
		case imageExtensions[ext]:
			if cfg.ImagePath != "" {
				return cfg, fmt.Errorf("only one image file can be viewed at a time")
			}
			cfg.ImagePath = file
		default:
			return cfg, fmt.Errorf("unknown file %q: expected a scene (.yaml, .yml, .toml) or an image (.hdr)", file)
		}
	}

	switch {
	case cfg.ScenePath != "" && cfg.ImagePath != "":
		return cfg, fmt.Errorf("cannot render a scene and view an image at the same time")
	case cfg.ScenePath == "" && cfg.ImagePath == "":
		return cfg, fmt.Errorf("missing scene or image file argument")
	case cfg.ImagePath != "" && cfg.NoGUI:
		return cfg, fmt.Errorf("viewing %s needs the preview, remove --no-gui", cfg.ImagePath)
	}
	return cfg, nil
}

// OutputBase returns the scene path without its extension; outputs are
// written next to the scene
func (c Config) OutputBase() string {
	path := c.ScenePath
	if path == "" {
		path = c.ImagePath
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}
