package uphysics

import (
	"time"

	"github.com/gekko3d/uphysics/bvh"
	"github.com/gekko3d/uphysics/geom"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrNoTriangles is returned when registering an entity without geometry.
var ErrNoTriangles = errors.New("uphysics: no collision triangles")

// registeredBVH is one registered mesh: its tree plus the range of the
// engine's triangle buffer that the tree's local indices refer to.
type registeredBVH struct {
	id       uuid.UUID
	handle   Handle
	owner    EntityId
	tree     bvh.Tree
	triStart uint32
	triCount uint32
	stats    bvh.Stats
}

// Engine owns a triangle buffer and one static tree per registered mesh, and
// answers cast and overlap queries against all of them.
//
// Engine does no locking. Registration and queries must be serialized by the
// caller.
type Engine struct {
	cfg     Config
	log     Logger
	builder *bvh.Builder
	grid    *SpatialHashGrid
	handles handleTable

	triangles []geom.Triangle
	// ordered by triStart
	meshes []*registeredBVH
}

// NewEngine returns an initialized engine. An invalid cfg is reported through
// logger and replaced by DefaultConfig. A nil logger discards output.
func NewEngine(cfg Config, logger Logger) *Engine {
	if logger == nil {
		logger = NewNopLogger()
	}
	if err := cfg.Validate(); err != nil {
		logger.Warnf("uphysics: %v; using defaults", err)
		debug := cfg.Debug
		cfg = DefaultConfig()
		cfg.Debug = debug
	}
	if cfg.Debug {
		logger.SetDebug(true)
	}

	e := &Engine{cfg: cfg, log: logger}
	e.Init()
	return e
}

// Init drops every registration and resets the triangle buffer.
func (e *Engine) Init() {
	e.builder = bvh.NewBuilder(e.cfg.builderOptions())
	e.grid = NewSpatialHashGrid(e.cfg.GridCellSize, e.cfg.GridMaxCells)
	e.handles.reset()
	e.triangles = nil
	e.meshes = nil
}

// Update is called once per frame. Registered trees are static, so there is
// nothing to do.
func (e *Engine) Update(dt float32) {}

func (e *Engine) Config() Config {
	return e.cfg
}

// RegisterEntity copies tris to the end of the triangle buffer and builds a
// tree over them. The returned handle stays valid until Unregister or
// UnregisterEntity removes the registration.
func (e *Engine) RegisterEntity(owner EntityId, tris []geom.Triangle) (Handle, error) {
	if len(tris) == 0 {
		e.log.Warnf("entity %d has no collision triangles, not registered", owner)
		return 0, errors.Wrapf(ErrNoTriangles, "register entity %d", owner)
	}

	start := len(e.triangles)
	e.triangles = append(e.triangles, tris...)
	tree, stats := e.builder.Build(e.triangles[start:])

	m := &registeredBVH{
		id:       uuid.New(),
		owner:    owner,
		tree:     tree,
		triStart: uint32(start),
		triCount: uint32(len(tris)),
		stats:    stats,
	}
	m.handle = e.handles.alloc(m)
	e.meshes = append(e.meshes, m)
	e.grid.Insert(m.handle.slot(), tree.Bounds())

	e.log.Debugf("registered mesh %s (handle %s) for entity %d: %d triangles, %d nodes, %d leaves, depth %d, built in %s",
		m.id, m.handle, owner, len(tris), stats.Nodes, stats.Leaves, stats.MaxDepth, stats.Duration)
	return m.handle, nil
}

// RegisterMesh expands an indexed mesh through tr and registers the result.
func (e *Engine) RegisterMesh(owner EntityId, mesh geom.Mesh, tr geom.Transform) (Handle, error) {
	tris, err := mesh.Triangles(tr)
	if err != nil {
		return 0, errors.Wrapf(err, "register mesh %q for entity %d", mesh.Name, owner)
	}
	return e.RegisterEntity(owner, tris)
}

// UnregisterEntity removes every registration owned by owner and returns how
// many were removed.
func (e *Engine) UnregisterEntity(owner EntityId) int {
	victims := lo.Filter(e.meshes, func(m *registeredBVH, _ int) bool {
		return m.owner == owner
	})
	e.remove(victims)
	return len(victims)
}

// Unregister removes one registration. Stale or zero handles report false.
func (e *Engine) Unregister(h Handle) bool {
	m, ok := e.handles.resolve(h)
	if !ok {
		return false
	}
	e.remove([]*registeredBVH{m})
	return true
}

// remove drops victims and compacts the triangle buffer. Tree indices are
// local to each registration, so only triStart offsets move.
func (e *Engine) remove(victims []*registeredBVH) {
	if len(victims) == 0 {
		return
	}
	gone := make(map[*registeredBVH]struct{}, len(victims))
	for _, m := range victims {
		gone[m] = struct{}{}
		e.grid.Remove(m.handle.slot(), m.tree.Bounds())
		e.handles.release(m.handle)
	}
	e.meshes = lo.Reject(e.meshes, func(m *registeredBVH, _ int) bool {
		_, ok := gone[m]
		return ok
	})

	write := uint32(0)
	for _, m := range e.meshes {
		if m.triStart != write {
			copy(e.triangles[write:], e.triangles[m.triStart:m.triStart+m.triCount])
			m.triStart = write
		}
		write += m.triCount
	}
	dropped := uint32(len(e.triangles)) - write
	e.triangles = e.triangles[:write]

	e.log.Debugf("unregistered %d meshes, dropped %d triangles, %d remain", len(victims), dropped, write)
}

// Owner returns the entity a handle was registered for.
func (e *Engine) Owner(h Handle) (EntityId, bool) {
	m, ok := e.handles.resolve(h)
	if !ok {
		return 0, false
	}
	return m.owner, true
}

// Len is the number of live registrations.
func (e *Engine) Len() int {
	return len(e.meshes)
}

// Triangle returns the buffer triangle a Hit.TriIndex refers to.
func (e *Engine) Triangle(index uint32) (geom.Triangle, bool) {
	if int(index) >= len(e.triangles) {
		return geom.Triangle{}, false
	}
	return e.triangles[index], true
}

// RayCast returns the nearest triangle along ray. ray.Dir need not be unit
// length; ray.TMin and ray.TMax are world distances along the normalized
// direction. Hits closer than TMin are skipped.
func (e *Engine) RayCast(ray geom.Ray) (Hit, bool) {
	return castBVH(e, rayCast{start: ray.Start, tMin: max(ray.TMin, 0)}, ray.Start, ray.Dir, ray.TMax)
}

// BoxCast sweeps an axis-aligned box from box.Center along dir for length.
func (e *Engine) BoxCast(box geom.Box, dir mgl32.Vec3, length float32) (Hit, bool) {
	return castBVH(e, boxCast{box: box}, box.Center, dir, length)
}

// SphereCast sweeps a sphere from center along dir for length.
func (e *Engine) SphereCast(center mgl32.Vec3, radius float32, dir mgl32.Vec3, length float32) (Hit, bool) {
	shape := sphereCast{center: center, radius: radius, margin: e.cfg.SphereMargin}
	return castBVH(e, shape, center, dir, length)
}

type MeshInfo struct {
	ID        uuid.UUID
	Handle    Handle
	Owner     EntityId
	TriStart  uint32
	TriCount  uint32
	Nodes     int
	Leaves    int
	Depth     int
	BuildTime time.Duration
}

type Stats struct {
	Meshes         int
	Triangles      int
	Nodes          int
	GridCells      int
	GridOversize   int
	TotalBuildTime time.Duration
	PerMesh        []MeshInfo
}

func (e *Engine) Stats() Stats {
	return Stats{
		Meshes:    len(e.meshes),
		Triangles: len(e.triangles),
		Nodes: lo.SumBy(e.meshes, func(m *registeredBVH) int {
			return len(m.tree.Nodes)
		}),
		GridCells:    e.grid.Cells(),
		GridOversize: e.grid.Oversize(),
		TotalBuildTime: lo.SumBy(e.meshes, func(m *registeredBVH) time.Duration {
			return m.stats.Duration
		}),
		PerMesh: lo.Map(e.meshes, func(m *registeredBVH, _ int) MeshInfo {
			return MeshInfo{
				ID:        m.id,
				Handle:    m.handle,
				Owner:     m.owner,
				TriStart:  m.triStart,
				TriCount:  m.triCount,
				Nodes:     m.stats.Nodes,
				Leaves:    m.stats.Leaves,
				Depth:     m.stats.MaxDepth,
				BuildTime: m.stats.Duration,
			}
		}),
	}
}
