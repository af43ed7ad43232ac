package geom

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrInvalidMesh is returned when a mesh's index list does not describe whole
// triangles over its vertex list.
var ErrInvalidMesh = errors.New("invalid mesh")

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// Apply maps an object-space point to world space.
func (t Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	return t.ObjectToWorld().Mul4x1(p.Vec4(1)).Vec3()
}

// Mesh is an indexed triangle list in object space. A nil Indices slice means
// the vertices are already laid out as consecutive triangles.
type Mesh struct {
	Name     string
	Vertices []mgl32.Vec3
	Indices  []uint32
}

// Triangles expands the mesh through tr into world-space triangles.
func (m Mesh) Triangles(tr Transform) ([]Triangle, error) {
	indices := m.Indices
	if indices == nil {
		indices = make([]uint32, len(m.Vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return nil, errors.Wrapf(ErrInvalidMesh, "mesh %q: %d indices is not a multiple of 3", m.Name, len(indices))
	}

	world := tr.ObjectToWorld()
	out := make([]Triangle, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		var v [3]mgl32.Vec3
		for k := 0; k < 3; k++ {
			idx := indices[i+k]
			if int(idx) >= len(m.Vertices) {
				return nil, errors.Wrapf(ErrInvalidMesh, "mesh %q: index %d out of range (%d vertices)", m.Name, idx, len(m.Vertices))
			}
			v[k] = world.Mul4x1(m.Vertices[idx].Vec4(1)).Vec3()
		}
		out = append(out, Triangle{V0: v[0], V1: v[1], V2: v[2]})
	}
	return out, nil
}
