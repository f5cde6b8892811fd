package vec

import "github.com/chewxy/math32"

// Vec3 is a position, direction or scale in world units (Y up).
type Vec3 struct {
	X, Y, Z float32
}

// New returns the vector (x, y, z).
func New(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// One is the identity scale.
var One = Vec3{1, 1, 1}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Mul multiplies component-wise (used for scaling extents).
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Len returns the Euclidean length.
func (v Vec3) Len() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dist returns the distance between two points.
func (v Vec3) Dist(o Vec3) float32 {
	return v.Sub(o).Len()
}

// Min and Max are component-wise.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{math32.Min(v.X, o.X), math32.Min(v.Y, o.Y), math32.Min(v.Z, o.Z)}
}

func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{math32.Max(v.X, o.X), math32.Max(v.Y, o.Y), math32.Max(v.Z, o.Z)}
}

// Array returns the vector as [x, y, z], the layout physics and JSON payloads use.
func (v Vec3) Array() [3]float32 { return [3]float32{v.X, v.Y, v.Z} }

// FromArray is the inverse of Array.
func FromArray(a [3]float32) Vec3 { return Vec3{a[0], a[1], a[2]} }

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// Quat is a unit quaternion (X, Y, Z, W).
type Quat struct {
	X, Y, Z, W float32
}

// Identity is the zero rotation.
var Identity = Quat{W: 1}

// QuatFromEuler builds a rotation from Euler angles in radians, applied in XYZ order.
func QuatFromEuler(x, y, z float32) Quat {
	c1, s1 := math32.Cos(x/2), math32.Sin(x/2)
	c2, s2 := math32.Cos(y/2), math32.Sin(y/2)
	c3, s3 := math32.Cos(z/2), math32.Sin(z/2)
	return Quat{
		X: s1*c2*c3 + c1*s2*s3,
		Y: c1*s2*c3 - s1*c2*s3,
		Z: c1*c2*s3 + s1*s2*c3,
		W: c1*c2*c3 - s1*s2*s3,
	}
}

// Dot is the scalar product.
func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross is the vector product.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	s := q.W
	return u.Scale(2 * u.Dot(v)).
		Add(v.Scale(s*s - u.Dot(u))).
		Add(u.Cross(v).Scale(2 * s))
}

// Box is an axis-aligned bounding box. The zero value is not empty; use EmptyBox.
type Box struct {
	Min, Max Vec3
}

// EmptyBox returns a box that any Extend call replaces.
func EmptyBox() Box {
	inf := math32.Inf(1)
	return Box{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// Extend grows b to contain p.
func (b Box) Extend(p Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union grows b to contain o. Empty boxes are ignored.
func (b Box) Union(o Box) Box {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// IsEmpty reports whether the box contains no point.
func (b Box) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// Size returns the extent along each axis (zero for empty boxes).
func (b Box) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint (origin for empty boxes).
func (b Box) Center() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}
