package integrator

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync/atomic"
	"time"

	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-tiled-renderer/pkg/core"
	"github.com/df07/go-tiled-renderer/pkg/renderer"
)

const (
	photonChunkSize   = 4096 // Photons shot per unit of parallel work
	photonMaxBounces  = 64
	photonRRDepth     = 3
	radiusScaleFactor = 500 // Automatic radius is the scene diagonal over this
)

// photon is a stored flux sample on a non-delta surface
type photon struct {
	position  core.Vec3
	direction core.Vec3 // Unit vector pointing back along the incoming photon path
	power     core.Vec3
}

// Bounds implements rtreego.Spatial
func (p *photon) Bounds() rtreego.Rect {
	return rtreego.Point{p.position.X, p.position.Y, p.position.Z}.ToRect(1e-9)
}

// boundedScene is implemented by scenes that know their extent
type boundedScene interface {
	BoundingBox() core.AABB
}

// powerSampledScene is implemented by scenes that can pick emitters in
// proportion to their power
type powerSampledScene interface {
	SampleEmitterPower(u float64) (core.EmitterID, float64)
}

// PhotonMapper renders in two passes: photons are traced from the emitters
// into an R-tree, then the tiled scheduler estimates radiance at the first
// non-delta hit of each camera path from the photon density
type PhotonMapper struct {
	PhotonCount  int
	PhotonRadius float64 // Gather radius; zero derives it from the scene bounds

	radius  float64
	emitted int
	photons *rtreego.Rtree
}

// NewPhotonMapper reads "photonCount" (default 100000) and "photonRadius"
// (default 0, automatic)
func NewPhotonMapper(props core.PropertyList) (*PhotonMapper, error) {
	count, err := props.Int("photonCount", 100000)
	if err != nil {
		return nil, err
	}
	radius, err := props.Float("photonRadius", 0)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, errors.Errorf("photonCount must be positive, got %d", count)
	}
	if radius < 0 {
		return nil, errors.Errorf("photonRadius must be non-negative, got %g", radius)
	}
	return &PhotonMapper{PhotonCount: count, PhotonRadius: radius}, nil
}

// Preprocess resolves the gather radius
func (pm *PhotonMapper) Preprocess(scene core.Scene) error {
	pm.radius = pm.PhotonRadius
	if pm.radius > 0 {
		return nil
	}
	bs, ok := scene.(boundedScene)
	if !ok {
		return errors.Errorf("photonRadius is required for scenes without bounds")
	}
	box := bs.BoundingBox()
	pm.radius = box.Max.Subtract(box.Min).Length() / radiusScaleFactor
	if pm.radius <= 0 || math.IsInf(pm.radius, 0) || math.IsNaN(pm.radius) {
		return errors.Errorf("cannot derive photonRadius from scene bounds %v", box)
	}
	logger.Debugf("Photon gather radius %g", pm.radius)
	return nil
}

// Render builds the photon map and then runs the tiled scheduler
func (pm *PhotonMapper) Render(ctx context.Context, scene core.Scene, result *renderer.ImageBlock, opts renderer.Options) (renderer.Stats, error) {
	if pm.radius <= 0 {
		if err := pm.Preprocess(scene); err != nil {
			return renderer.Stats{}, err
		}
	}

	start := time.Now()
	photons, err := pm.shootPhotons(ctx, scene, opts.Workers)
	if err != nil {
		return renderer.Stats{}, err
	}

	spatials := make([]rtreego.Spatial, len(photons))
	for i := range photons {
		spatials[i] = &photons[i]
	}
	pm.photons = rtreego.NewTree(3, 25, 50, spatials...)
	pm.emitted = pm.PhotonCount
	logger.Infof("Stored %d photons from %d emitted in %v", len(photons), pm.emitted,
		time.Since(start).Round(time.Millisecond))

	return renderer.RenderTiles(ctx, scene, result, opts)
}

// shootPhotons traces PhotonCount photons in fixed-size chunks. Every chunk
// reseeds its sampler from its index and results are concatenated in chunk
// order, so the map does not depend on the number of workers.
func (pm *PhotonMapper) shootPhotons(ctx context.Context, scene core.Scene, workers int) ([]photon, error) {
	if len(scene.GetEmitters()) == 0 {
		logger.Warningf("Scene has no emitters, photon map is empty")
		return nil, nil
	}

	chunks := (pm.PhotonCount + photonChunkSize - 1) / photonChunkSize
	stored := make([][]photon, chunks)
	var next atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < max(1, min(workers, chunks)); w++ {
		g.Go(func() error {
			sampler := scene.GetSampler().Clone()
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				chunk := int(next.Add(1) - 1)
				if chunk >= chunks {
					return nil
				}
				sampler.Prepare(image.Rect(chunk, -1, chunk+1, 0))
				count := min(photonChunkSize, pm.PhotonCount-chunk*photonChunkSize)
				for i := 0; i < count; i++ {
					stored[chunk] = pm.tracePhoton(scene, sampler, stored[chunk])
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var photons []photon
	for _, chunk := range stored {
		photons = append(photons, chunk...)
	}
	return photons, nil
}

// pickPhotonEmitter prefers power-proportional selection so bright lights
// get more photons
func pickPhotonEmitter(scene core.Scene, u float64) (core.Emitter, float64) {
	if ps, ok := scene.(powerSampledScene); ok {
		id, prob := ps.SampleEmitterPower(u)
		return scene.GetEmitter(id), prob
	}
	return pickEmitter(scene, u)
}

// tracePhoton emits one photon from a randomly chosen emitter and appends
// every non-delta surface interaction along its path
func (pm *PhotonMapper) tracePhoton(scene core.Scene, sampler core.Sampler, out []photon) []photon {
	emitter, prob := pickPhotonEmitter(scene, sampler.Next1D())
	if emitter == nil || prob <= 0 {
		return out
	}
	pr := core.ShootPhoton(emitter, sampler)
	if !pr.Success {
		return out
	}

	flux := pr.Flux.Multiply(1 / prob)
	throughput := core.Splat(1)
	ray := pr.Ray
	for bounce := 0; bounce < photonMaxBounces; bounce++ {
		its, ok := scene.RayIntersect(ray)
		if !ok {
			break
		}
		bsdf := its.Shape.GetBSDF()
		if bsdf == nil {
			break
		}
		if !bsdf.IsDelta() {
			out = append(out, photon{
				position:  its.P,
				direction: ray.Direction.Negate(),
				power:     flux.MultiplyVec(throughput),
			})
		}

		rec := core.NewBSDFQueryRecord(its.ShFrame.ToLocal(ray.Direction.Negate()))
		weight, ok := bsdf.Sample(&rec, sampler)
		if !ok {
			break
		}
		throughput = throughput.MultiplyVec(weight)

		if bounce >= photonRRDepth {
			survival := math.Min(throughput.MaxComponent(), 0.99)
			if sampler.Next1D() >= survival {
				break
			}
			throughput = throughput.Multiply(1 / survival)
		}
		ray = core.NewRay(its.P, its.ShFrame.ToWorld(rec.Wo))
	}
	return out
}

// Li follows delta BSDFs from the camera and returns the emitted radiance
// along the way plus a photon density estimate at the first non-delta hit
func (pm *PhotonMapper) Li(scene core.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	var result core.Vec3
	throughput := core.Splat(1)

	for bounce := 0; bounce < photonMaxBounces; bounce++ {
		its, ok := scene.RayIntersect(ray)
		if !ok {
			break
		}
		if e, id := hitEmitter(scene, its); e != nil {
			le, _ := emitted(e, id, ray, its)
			result = result.Add(throughput.MultiplyVec(le))
		}

		bsdf := its.Shape.GetBSDF()
		if bsdf == nil {
			break
		}
		wi := its.ShFrame.ToLocal(ray.Direction.Negate())
		if !bsdf.IsDelta() {
			return result.Add(throughput.MultiplyVec(pm.estimateRadiance(its, bsdf, wi)))
		}

		if bounce >= photonRRDepth {
			survival := math.Min(throughput.MaxComponent(), 0.99)
			if sampler.Next1D() >= survival {
				break
			}
			throughput = throughput.Multiply(1 / survival)
		}

		rec := core.NewBSDFQueryRecord(wi)
		weight, ok := bsdf.Sample(&rec, sampler)
		if !ok {
			break
		}
		throughput = throughput.MultiplyVec(weight)
		ray = core.NewRay(its.P, its.ShFrame.ToWorld(rec.Wo))
	}
	return result
}

// estimateRadiance sums the photons within the gather radius of its.P
func (pm *PhotonMapper) estimateRadiance(its core.Intersection, bsdf core.BSDF, wi core.Vec3) core.Vec3 {
	if pm.photons == nil || pm.emitted == 0 {
		return core.Vec3{}
	}

	r := pm.radius
	query, err := rtreego.NewRect(
		rtreego.Point{its.P.X - r, its.P.Y - r, its.P.Z - r},
		[]float64{2 * r, 2 * r, 2 * r})
	if err != nil {
		return core.Vec3{}
	}

	var sum core.Vec3
	for _, s := range pm.photons.SearchIntersect(query) {
		p := s.(*photon)
		if p.position.Subtract(its.P).LengthSquared() > r*r {
			continue
		}
		rec := core.NewBSDFQueryRecordPair(wi, its.ShFrame.ToLocal(p.direction), core.MeasureSolidAngle)
		sum = sum.Add(bsdf.Eval(&rec).MultiplyVec(p.power))
	}
	return sum.Multiply(1 / (math.Pi * r * r * float64(pm.emitted)))
}

func (pm *PhotonMapper) String() string {
	return fmt.Sprintf("PhotonMapper[photonCount=%d, photonRadius=%g]", pm.PhotonCount, pm.PhotonRadius)
}
