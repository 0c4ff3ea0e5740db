package cmd

import (
	"fmt"
	"io"
	"strings"
)

const previewBarWidth = 40

// progressPreview draws a progress bar for the running render. Updates are
// serialized by the renderer.
type progressPreview struct {
	out  io.Writer
	last int
}

func newProgressPreview(out io.Writer) *progressPreview {
	return &progressPreview{out: out, last: -1}
}

func (p *progressPreview) update(done, total int) {
	if total <= 0 {
		return
	}
	filled := done * previewBarWidth / total
	if filled == p.last && done != total {
		return
	}
	p.last = filled

	fmt.Fprintf(p.out, "\r[%s%s] %3d%% (%d/%d blocks)",
		strings.Repeat("#", filled), strings.Repeat(" ", previewBarWidth-filled),
		done*100/total, done, total)
	if done == total {
		fmt.Fprintln(p.out)
	}
}
