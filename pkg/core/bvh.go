package core

import "sort"

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape // Leaf payload, nil for internal nodes
}

// BVH answers nearest-hit and any-hit queries over a fixed set of shapes.
// It is immutable once built and safe for concurrent queries.
type BVH struct {
	Root *BVHNode
}

// leafThreshold is the largest shape count stored in a single leaf
const leafThreshold = 8

// NewBVH builds a BVH with median splits along the longest axis
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}
	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)
	return &BVH{Root: buildBVH(shapesCopy)}
}

func buildBVH(shapes []Shape) *BVHNode {
	box := shapes[0].BoundingBox()
	for _, s := range shapes[1:] {
		box = box.Union(s.BoundingBox())
	}

	if len(shapes) <= leafThreshold {
		return &BVHNode{BoundingBox: box, Shapes: shapes}
	}

	axis := box.LongestAxis()
	sort.SliceStable(shapes, func(i, j int) bool {
		return shapes[i].BoundingBox().Center().Get(axis) < shapes[j].BoundingBox().Center().Get(axis)
	})

	mid := len(shapes) / 2
	return &BVHNode{
		BoundingBox: box,
		Left:        buildBVH(shapes[:mid]),
		Right:       buildBVH(shapes[mid:]),
	}
}

// Hit returns the nearest intersection inside the ray's interval
func (bvh *BVH) Hit(ray Ray) (Intersection, bool) {
	if bvh.Root == nil {
		return Intersection{}, false
	}
	return hitNode(bvh.Root, ray)
}

func hitNode(node *BVHNode, ray Ray) (Intersection, bool) {
	if !node.BoundingBox.Hit(ray) {
		return Intersection{}, false
	}

	var closest Intersection
	found := false

	if node.Shapes != nil {
		for _, shape := range node.Shapes {
			if its, ok := shape.Hit(ray); ok {
				found = true
				closest = its
				ray.TMax = its.T
			}
		}
		return closest, found
	}

	for _, child := range [2]*BVHNode{node.Left, node.Right} {
		if child == nil {
			continue
		}
		if its, ok := hitNode(child, ray); ok {
			found = true
			closest = its
			ray.TMax = its.T
		}
	}
	return closest, found
}

// HitAny reports whether any shape intersects the ray's interval
func (bvh *BVH) HitAny(ray Ray) bool {
	if bvh.Root == nil {
		return false
	}
	return hitAnyNode(bvh.Root, ray)
}

func hitAnyNode(node *BVHNode, ray Ray) bool {
	if !node.BoundingBox.Hit(ray) {
		return false
	}
	if node.Shapes != nil {
		for _, shape := range node.Shapes {
			if _, ok := shape.Hit(ray); ok {
				return true
			}
		}
		return false
	}
	return (node.Left != nil && hitAnyNode(node.Left, ray)) ||
		(node.Right != nil && hitAnyNode(node.Right, ray))
}
