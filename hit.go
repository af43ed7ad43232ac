package uphysics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// EntityId identifies whoever registered a mesh. The engine stores it for
// attribution and never interprets it.
type EntityId uint64

// Handle names one registration. It packs a slot index with a generation so
// a handle kept past Unregister no longer resolves. The zero Handle is never
// issued.
type Handle uint64

func makeHandle(slot, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot))
}

func (h Handle) slot() uint32       { return uint32(h) }
func (h Handle) generation() uint32 { return uint32(h >> 32) }

func (h Handle) IsZero() bool {
	return h == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.slot(), h.generation())
}

// Hit describes the first contact of a cast or one contact of an overlap.
type Hit struct {
	// T is the distance travelled along the normalized cast direction.
	T float32
	// Depth is the penetration depth for starts in solid and overlaps.
	Depth float32
	// Pos is the cast origin (ray start, box or sphere center) at T.
	Pos mgl32.Vec3
	// Point is the contact point on the cast shape's surface.
	Point mgl32.Vec3
	// Normal points from the triangle toward the cast shape.
	Normal mgl32.Vec3
	// TriIndex indexes the engine's triangle buffer and is valid until the
	// next register or unregister.
	TriIndex uint32
	// LocalTriIndex indexes the triangles passed at registration.
	LocalTriIndex uint32
	Handle        Handle
	Owner         EntityId
	// StartSolid is set when the shape already penetrates the triangle at
	// its start pose, AllSolid when it still does at the end pose.
	StartSolid bool
	AllSolid   bool
}
