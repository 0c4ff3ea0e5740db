package renderer

import "time"

// WorkerStats describes the work done by one render worker
type WorkerStats struct {
	Worker  int           // Worker index
	Blocks  int           // Tiles rendered
	Samples int64         // Camera samples traced
	Busy    time.Duration // Time spent rendering tiles
}

// Stats summarizes a render
type Stats struct {
	Blocks         int           // Total number of tiles
	Unissued       int           // Tiles never started because rendering stopped early
	Pixels         int           // Pixels in the output image
	Samples        int64         // Camera samples traced
	InvalidSamples int64         // Samples rejected for NaN, infinite or negative values
	Elapsed        time.Duration // Wall time including preprocessing
	Workers        []WorkerStats // Per-worker breakdown, empty for custom renders
}

// SamplesPerSecond returns the overall sample throughput
func (s Stats) SamplesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Samples) / s.Elapsed.Seconds()
}

// AverageSamples returns the mean number of samples per pixel
func (s Stats) AverageSamples() float64 {
	if s.Pixels == 0 {
		return 0
	}
	return float64(s.Samples) / float64(s.Pixels)
}
