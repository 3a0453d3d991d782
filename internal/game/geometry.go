package game

import "math"

// Pure collision primitives. Both tests treat degenerate input (zero-length
// ray, non-positive radius or threshold) as "no hit" rather than erroring,
// so a malformed entity costs at most one missed frame.

// DistanceHit reports whether two positions are within threshold of each
// other. Squared-distance compare, no sqrt.
func DistanceHit(a, b Vec3, threshold float64) bool {
	if threshold <= 0 {
		return false
	}
	return a.DistanceSq(b) <= threshold*threshold
}

// RaySphereHit intersects a ray segment with a bounding sphere using the
// closest-approach formulation. dir must be normalized; length bounds the
// segment. Returns the nearest intersection point, its distance along the
// ray, and whether a hit occurred.
//
// A sphere behind the origin or farther than length does not hit. When the
// origin is inside the sphere the exit intersection is returned, which keeps
// point-blank shots from passing through.
func RaySphereHit(origin, dir Vec3, length float64, center Vec3, radius float64) (Vec3, float64, bool) {
	if length <= 0 || radius <= 0 {
		return Vec3{}, 0, false
	}
	if dir.LengthSq() == 0 {
		return Vec3{}, 0, false
	}

	oc := center.Sub(origin)
	tca := oc.Dot(dir)
	if tca < 0 {
		return Vec3{}, 0, false // Sphere is behind the ray
	}

	d2 := oc.LengthSq() - tca*tca
	r2 := radius * radius
	if d2 > r2 {
		return Vec3{}, 0, false // Ray passes outside the sphere
	}

	thc := math.Sqrt(r2 - d2)
	t := tca - thc
	if t < 0 {
		t = tca + thc // Origin inside the sphere: take the exit point
	}
	if t > length {
		return Vec3{}, 0, false // Intersection beyond the segment end
	}

	return origin.Add(dir.Scale(t)), t, true
}
