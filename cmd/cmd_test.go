package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-tiled-renderer/pkg/log"
	"github.com/df07/go-tiled-renderer/pkg/renderer"
)

func testFlags(threads int, noGUI bool) RenderFlags {
	return RenderFlags{Threads: threads, BlockSize: renderer.DefaultBlockSize, Traversal: "spiral", NoGUI: noGUI}
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(testFlags(4, true), log.Info, []string{"scenes/cbox.yaml"})
	require.NoError(t, err)
	assert.Equal(t, Config{
		Threads:   4,
		BlockSize: renderer.DefaultBlockSize,
		Traversal: renderer.TraversalSpiral,
		NoGUI:     true,
		ScenePath: "scenes/cbox.yaml",
		LogLevel:  log.Info,
	}, cfg)
	assert.Equal(t, "scenes/cbox", cfg.OutputBase())

	cfg, err = NewConfig(testFlags(1, false), log.Notice, []string{"out/IMAGE.HDR"})
	require.NoError(t, err)
	assert.Equal(t, "out/IMAGE.HDR", cfg.ImagePath)
	assert.Empty(t, cfg.ScenePath)
	assert.Equal(t, "out/IMAGE", cfg.OutputBase())

	flags := testFlags(2, false)
	flags.Traversal = "scanline"
	flags.BlockSize = 8
	cfg, err = NewConfig(flags, log.Notice, []string{"a.toml"})
	require.NoError(t, err)
	assert.Equal(t, "a.toml", cfg.ScenePath)
	assert.Equal(t, renderer.TraversalScanline, cfg.Traversal)
	assert.Equal(t, 8, cfg.BlockSize)

	flags.Traversal = "hilbert"
	_, err = NewConfig(flags, log.Notice, []string{"a.toml"})
	assert.ErrorContains(t, err, "hilbert")

	flags.Traversal = "spiral"
	flags.BlockSize = 0
	_, err = NewConfig(flags, log.Notice, []string{"a.toml"})
	assert.ErrorContains(t, err, "block size")
}

func TestNewConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		threads  int
		noGUI    bool
		files    []string
		contains string
	}{
		{"zero threads", 0, false, []string{"a.yaml"}, "threads"},
		{"negative threads", -3, false, []string{"a.yaml"}, "threads"},
		{"no file", 1, false, nil, "missing"},
		{"scene and image", 1, false, []string{"a.yaml", "b.hdr"}, "same time"},
		{"two scenes", 1, false, []string{"a.yaml", "b.toml"}, "one scene"},
		{"two images", 1, false, []string{"a.hdr", "b.hdr"}, "one image"},
		{"unknown extension", 1, false, []string{"scene.xml"}, "scene.xml"},
		{"no extension", 1, false, []string{"scene"}, "unknown file"},
		{"image without preview", 1, true, []string{"a.hdr"}, "--no-gui"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(testFlags(tt.threads, tt.noGUI), log.Notice, tt.files)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.contains)
		})
	}
}

const testScene = `
integrator:
  type: path_mis
sampler:
  type: independent
  sampleCount: 2
camera:
  type: perspective
  width: 12
  height: 8
  origin: [0, 1, 4]
  target: [0, 0.5, 0]
shapes:
  - type: quad
    corner: [-5, 0, -5]
    u: [0, 0, 10]
    v: [10, 0, 0]
  - type: sphere
    center: [0, 0.5, 0]
    radius: 0.5
    bsdf: {type: phong}
  - type: quad
    corner: [-1, 3, -1]
    u: [2, 0, 0]
    v: [0, 0, 2]
    emitter: {type: area, radiance: 5}
`

func TestRenderAndViewScene(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(scenePath, []byte(testScene), 0o644))

	cfg, err := NewConfig(testFlags(3, false), log.Notice, []string{scenePath})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, renderScene(context.Background(), cfg, &out))
	assert.Contains(t, out.String(), "100%")
	assert.Contains(t, out.String(), "TOTAL")

	hdrPath := filepath.Join(dir, "test.hdr")
	assert.FileExists(t, hdrPath)
	assert.FileExists(t, filepath.Join(dir, "test.png"))

	rendered, err := renderer.LoadHDR(hdrPath)
	require.NoError(t, err)
	assert.Equal(t, 12, rendered.Width)
	assert.Equal(t, 8, rendered.Height)
	assert.Greater(t, rendered.AverageLuminance(), 0.0)

	require.NoError(t, os.Remove(filepath.Join(dir, "test.png")))
	cfg, err = NewConfig(testFlags(1, false), log.Notice, []string{hdrPath})
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, viewImage(cfg, &out))
	assert.Contains(t, out.String(), "12x8")
	assert.FileExists(t, filepath.Join(dir, "test.png"))
}

func TestRenderSceneErrors(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewConfig(testFlags(1, true), log.Notice, []string{filepath.Join(dir, "missing.yaml")})
	require.NoError(t, err)
	assert.Error(t, renderScene(context.Background(), cfg, &bytes.Buffer{}))

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("camera: {type: perspective}"), 0o644))
	cfg, err = NewConfig(testFlags(1, true), log.Notice, []string{broken})
	require.NoError(t, err)
	assert.ErrorContains(t, renderScene(context.Background(), cfg, &bytes.Buffer{}), "integrator")
}

func TestRenderSceneCancelled(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "test.toml")
	require.NoError(t, os.WriteFile(scenePath, []byte(`
[integrator]
type = "normals"
[camera]
type = "perspective"
width = 64
height = 64
`), 0o644))

	cfg, err := NewConfig(testFlags(2, true), log.Notice, []string{scenePath})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = renderScene(ctx, cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "test.hdr"))
}

func TestProgressPreview(t *testing.T) {
	var out bytes.Buffer
	p := newProgressPreview(&out)
	for done := 1; done <= 80; done++ {
		p.update(done, 80)
	}
	// One redraw per filled bar cell
	assert.Equal(t, previewBarWidth+1, strings.Count(out.String(), "\r"))
	assert.Contains(t, out.String(), "100% (80/80 blocks)")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))

	out.Reset()
	newProgressPreview(&out).update(0, 0)
	assert.Empty(t, out.String())
}

func TestDisplayRenderStats(t *testing.T) {
	var out bytes.Buffer
	displayRenderStats(&out, renderer.Stats{
		Blocks:         3,
		Pixels:         100,
		Samples:        400,
		InvalidSamples: 2,
		Elapsed:        2 * time.Second,
		Workers: []renderer.WorkerStats{
			{Worker: 0, Blocks: 2, Samples: 300, Busy: time.Second},
			{Worker: 1, Blocks: 1, Samples: 100, Busy: 500 * time.Millisecond},
		},
	})
	s := out.String()
	assert.Contains(t, s, "Worker")
	assert.Contains(t, s, "50.0 %")
	assert.Contains(t, s, "25.0 %")
	assert.Contains(t, s, "4 spp")
	assert.Contains(t, s, "2 invalid samples")
}
