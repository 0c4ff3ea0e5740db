package cmd

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/df07/go-tiled-renderer/pkg/renderer"
	"github.com/df07/go-tiled-renderer/pkg/scene"
)

// DefaultThreads is the default number of render workers
var DefaultThreads = runtime.NumCPU()

// Render renders a scene file, or previews an HDR image, given as the only argument.
func Render(ctx *cli.Context) error {
	level := verbosity(ctx)
	setupLogging(level)

	flags := RenderFlags{
		Threads:   ctx.Int("threads"),
		BlockSize: ctx.Int("block-size"),
		Traversal: ctx.String("traversal"),
		NoGUI:     ctx.Bool("no-gui"),
	}
	cfg, err := NewConfig(flags, level, ctx.Args())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.ImagePath != "" {
		err = viewImage(cfg, os.Stdout)
	} else {
		err = renderScene(runCtx, cfg, os.Stdout)
	}
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

// renderScene loads, renders and saves the scene named by cfg
func renderScene(ctx context.Context, cfg Config, out io.Writer) error {
	sc, err := scene.LoadFile(cfg.ScenePath)
	if err != nil {
		return err
	}

	opts := renderer.DefaultOptions()
	opts.Workers = cfg.Threads
	opts.BlockSize = cfg.BlockSize
	opts.Traversal = cfg.Traversal
	if !cfg.NoGUI {
		opts.Progress = newProgressPreview(out).update
	}

	logger.Noticef("Rendering %s (%d shapes, %d emitters) with %d threads",
		cfg.ScenePath, sc.GetPrimitiveCount(), len(sc.GetEmitters()), cfg.Threads)
	result, stats, err := renderer.Render(ctx, sc, opts)
	if err != nil {
		return errors.Wrap(err, "render")
	}

	bitmap := result.ToBitmap()
	base := cfg.OutputBase()
	if err := bitmap.SaveHDR(base + ".hdr"); err != nil {
		return err
	}
	if err := bitmap.SavePNG(base + ".png"); err != nil {
		return err
	}
	logger.Noticef("Wrote %s.hdr and %s.png", base, base)

	displayRenderStats(out, stats)
	return nil
}

// viewImage loads an HDR image, reports it and writes a tone mapped copy
func viewImage(cfg Config, out io.Writer) error {
	bitmap, err := renderer.LoadHDR(cfg.ImagePath)
	if err != nil {
		return err
	}

	block := renderer.NewImageBlock(image.Rect(0, 0, bitmap.Width, bitmap.Height), nil)
	if err := block.FromBitmap(bitmap); err != nil {
		return err
	}
	preview := block.ToBitmap()

	path := cfg.OutputBase() + ".png"
	if err := preview.SavePNG(path); err != nil {
		return err
	}
	displayImageStats(out, cfg.ImagePath, preview)
	fmt.Fprintf(out, "Preview written to %s\n", path)
	return nil
}
