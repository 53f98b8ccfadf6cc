// Package disc wraps the host's per-disc property objects with typed
// accessors and distance helpers.
package disc

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cory-johannsen/haxroom/internal/native"
)

// Transparent is the Color value the host uses for an invisible disc.
const Transparent = -1

// Source reads and writes one disc's properties on the host.
type Source interface {
	Properties() *native.DiscProperties
	SetProperties(p native.DiscProperties)
}

// Body gives typed pass-through access to a disc's physical properties.
// Every read goes to the host; nothing is cached.
type Body struct {
	src Source
}

// NewBody wraps src.
func NewBody(src Source) Body {
	return Body{src: src}
}

func (b Body) props() *native.DiscProperties {
	if b.src == nil {
		return nil
	}
	return b.src.Properties()
}

func (b Body) set(p native.DiscProperties) {
	if b.src != nil {
		b.src.SetProperties(p)
	}
}

func readFloat(p *native.DiscProperties, field func(*native.DiscProperties) *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	v := field(p)
	if v == nil || math.IsNaN(*v) {
		return 0, false
	}
	return *v, true
}

func readInt(p *native.DiscProperties, field func(*native.DiscProperties) *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	v := field(p)
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Properties returns the raw property snapshot, nil when the disc is not in play.
func (b Body) Properties() *native.DiscProperties { return b.props() }

// SetProperties writes every non-nil field of p.
func (b Body) SetProperties(p native.DiscProperties) { b.set(p) }

func (b Body) X() (float64, bool) {
	return readFloat(b.props(), func(p *native.DiscProperties) *float64 { return p.X })
}

func (b Body) SetX(v float64) { b.set(native.DiscProperties{X: &v}) }

func (b Body) Y() (float64, bool) {
	return readFloat(b.props(), func(p *native.DiscProperties) *float64 { return p.Y })
}

func (b Body) SetY(v float64) { b.set(native.DiscProperties{Y: &v}) }

// Position returns the disc center.
func (b Body) Position() (native.Position, bool) {
	p := b.props()
	x, okX := readFloat(p, func(p *native.DiscProperties) *float64 { return p.X })
	y, okY := readFloat(p, func(p *native.DiscProperties) *float64 { return p.Y })
	if !okX || !okY {
		return native.Position{}, false
	}
	return native.Position{X: x, Y: y}, true
}

// SetPosition moves the disc center.
func (b Body) SetPosition(pos native.Position) {
	b.set(native.DiscProperties{X: &pos.X, Y: &pos.Y})
}

func (b Body) XSpeed() (float64, bool) {
	return readFloat(b.props(), func(p *native.DiscProperties) *float64 { return p.XSpeed })
}

func (b Body) SetXSpeed(v float64) { b.set(native.DiscProperties{XSpeed: &v}) }

func (b Body) YSpeed() (float64, bool) {
	return readFloat(b.props(), func(p *native.DiscProperties) *float64 { return p.YSpeed })
}

func (b Body) SetYSpeed(v float64) { b.set(native.DiscProperties{YSpeed: &v}) }

func (b Body) XGravity() (float64, bool) {
	return readFloat(b.props(), func(p *native.DiscProperties) *float64 { return p.XGravity })
}

func (b Body) SetXGravity(v float64) { b.set(native.DiscProperties{XGravity: &v}) }

func (b Body) YGravity() (float64, bool) {
	return readFloat(b.props(), func(p *native.DiscProperties) *float64 { return p.YGravity })
}

func (b Body) SetYGravity(v float64) { b.set(native.DiscProperties{YGravity: &v}) }

func (b Body) Radius() (float64, bool) {
	return readFloat(b.props(), func(p *native.DiscProperties) *float64 { return p.Radius })
}

func (b Body) SetRadius(v float64) { b.set(native.DiscProperties{Radius: &v}) }

// BCoeff is the bouncing coefficient.
func (b Body) BCoeff() (float64, bool) {
	return readFloat(b.props(), func(p *native.DiscProperties) *float64 { return p.BCoeff })
}

func (b Body) SetBCoeff(v float64) { b.set(native.DiscProperties{BCoeff: &v}) }

// InvMass is the inverse of the disc's mass.
func (b Body) InvMass() (float64, bool) {
	return readFloat(b.props(), func(p *native.DiscProperties) *float64 { return p.InvMass })
}

func (b Body) SetInvMass(v float64) { b.set(native.DiscProperties{InvMass: &v}) }

func (b Body) Damping() (float64, bool) {
	return readFloat(b.props(), func(p *native.DiscProperties) *float64 { return p.Damping })
}

func (b Body) SetDamping(v float64) { b.set(native.DiscProperties{Damping: &v}) }

// CMask is the set of collision groups this disc collides with.
func (b Body) CMask() (int, bool) {
	return readInt(b.props(), func(p *native.DiscProperties) *int { return p.CMask })
}

func (b Body) SetCMask(v int) { b.set(native.DiscProperties{CMask: &v}) }

// CGroup is the set of collision groups this disc belongs to.
func (b Body) CGroup() (int, bool) {
	return readInt(b.props(), func(p *native.DiscProperties) *int { return p.CGroup })
}

func (b Body) SetCGroup(v int) { b.set(native.DiscProperties{CGroup: &v}) }

// Locator is anything with a resolvable center and radius.
type Locator interface {
	Position() (native.Position, bool)
	Radius() (float64, bool)
}

// Distance returns the gap between the edges of a and c.
//
// Postcondition: ok is false if either position or radius is unresolvable;
// otherwise the result is max(0, |center a - center c| - ra - rc).
func Distance(a, c Locator) (float64, bool) {
	pa, ok := a.Position()
	if !ok {
		return 0, false
	}
	pc, ok := c.Position()
	if !ok {
		return 0, false
	}
	ra, ok := a.Radius()
	if !ok {
		return 0, false
	}
	rc, ok := c.Radius()
	if !ok {
		return 0, false
	}
	centers := mgl64.Vec2{pa.X, pa.Y}.Sub(mgl64.Vec2{pc.X, pc.Y}).Len()
	return math.Max(0, centers-ra-rc), true
}

// DistanceTo returns the gap between the edges of b and other.
func (b Body) DistanceTo(other Locator) (float64, bool) {
	return Distance(b, other)
}

// CollidingWith reports whether b touches other; ok mirrors DistanceTo.
func (b Body) CollidingWith(other Locator) (colliding, ok bool) {
	d, ok := b.DistanceTo(other)
	if !ok {
		return false, false
	}
	return d <= 0, true
}

// Disc is a body addressed by its index in the host's disc array. Index 0 is
// conventionally the ball.
type Disc struct {
	Body
	Index int
}

type indexSource struct {
	host  native.Host
	index int
}

func (s indexSource) Properties() *native.DiscProperties { return s.host.DiscProperties(s.index) }

func (s indexSource) SetProperties(p native.DiscProperties) { s.host.SetDiscProperties(s.index, p) }

// New returns the disc at index on host.
func New(host native.Host, index int) *Disc {
	return &Disc{Body: NewBody(indexSource{host: host, index: index}), Index: index}
}

// Color returns the disc color; Transparent means invisible.
func (d *Disc) Color() (int, bool) {
	return readInt(d.props(), func(p *native.DiscProperties) *int { return p.Color })
}

// SetColor sets the disc color.
func (d *Disc) SetColor(c int) { d.set(native.DiscProperties{Color: &c}) }

// Rebuild returns one Disc per index in [0, count).
func Rebuild(host native.Host, count int) []*Disc {
	if count < 0 {
		count = 0
	}
	discs := make([]*Disc, count)
	for i := range discs {
		discs[i] = New(host, i)
	}
	return discs
}
