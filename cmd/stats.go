package cmd

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/df07/go-tiled-renderer/pkg/renderer"
)

func displayRenderStats(out io.Writer, stats renderer.Stats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Blocks", "Samples", "Busy", "% of time"})
	for _, ws := range stats.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", ws.Worker),
			fmt.Sprintf("%d", ws.Blocks),
			fmt.Sprintf("%d", ws.Samples),
			ws.Busy.Round(time.Millisecond).String(),
			fmt.Sprintf("%02.1f %%", percent(ws.Busy, stats.Elapsed)),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprintf("%d", stats.Blocks),
		fmt.Sprintf("%d", stats.Samples),
		stats.Elapsed.Round(time.Millisecond).String(),
		fmt.Sprintf("%.0f spp", stats.AverageSamples()),
	})
	table.Render()

	fmt.Fprintf(out, "Render statistics\n%s", buf.String())
	if stats.InvalidSamples > 0 {
		fmt.Fprintf(out, "%d invalid samples were discarded\n", stats.InvalidSamples)
	}
}

func displayImageStats(out io.Writer, path string, bitmap *renderer.Bitmap) {
	minLum, maxLum := math.Inf(1), math.Inf(-1)
	for _, c := range bitmap.Pix {
		l := c.Luminance()
		minLum = math.Min(minLum, l)
		maxLum = math.Max(maxLum, l)
	}
	if len(bitmap.Pix) == 0 {
		minLum, maxLum = 0, 0
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Image", "Size", "Min luminance", "Mean luminance", "Max luminance"})
	table.Append([]string{
		path,
		fmt.Sprintf("%dx%d", bitmap.Width, bitmap.Height),
		fmt.Sprintf("%.4g", minLum),
		fmt.Sprintf("%.4g", bitmap.AverageLuminance()),
		fmt.Sprintf("%.4g", maxLum),
	})
	table.Render()
	fmt.Fprint(out, buf.String())
}

func percent(part, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}
