package ember

import (
	"fmt"
	"math"
	"os"

	"github.com/gekko3d/ember/render/core"
	"github.com/gekko3d/ember/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// spinRate is the yaw speed of AnimateSpin entities in radians per second.
const spinRate = 0.25

// Scene is the set of lit, textured entities drawn before the particles.
type Scene struct {
	Entities []*core.Entity
	Lights   []core.DirectionalLight

	base      []core.Transform
	animation []string
	meshes    map[string]*core.Mesh
}

func (s *Scene) Entity(name string) *core.Entity {
	for _, e := range s.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// BuildScene creates the entities of cfg. With a nil g the entities carry only
// transforms, which is enough to animate them.
func BuildScene(cfg Config, g *Graphics) (_ *Scene, err error) {
	scene := &Scene{
		Lights: append([]core.DirectionalLight(nil), cfg.Lights...),
		meshes: make(map[string]*core.Mesh),
	}
	defer func() {
		if err != nil {
			scene.Release()
		}
	}()

	materials := make(map[string]*core.Material)
	for _, ec := range cfg.Entities {
		var mesh *core.Mesh
		var mat *core.Material
		if g != nil {
			if mesh, err = scene.mesh(g.Device, ec.Mesh); err != nil {
				return nil, fmt.Errorf("entity %q: %w", ec.Name, err)
			}
			mat = materials[ec.Texture]
			if mat == nil {
				mat = &core.Material{
					Name:    ec.Texture,
					VS:      g.MeshVS,
					PS:      g.MeshPS,
					Texture: g.Texture(ec.Texture),
					Sampler: g.Sampler,
				}
				materials[ec.Texture] = mat
			}
		}

		e := core.NewEntity(ec.Name, mesh, mat)
		e.Transform = core.Transform{Position: ec.Position, Rotation: ec.Rotation, Scale: ec.Scale}
		if e.Transform.Scale == (mgl32.Vec3{}) {
			e.Transform.Scale = mgl32.Vec3{1, 1, 1}
		}
		e.FinalizeMatrix()

		scene.Entities = append(scene.Entities, e)
		scene.base = append(scene.base, e.Transform)
		scene.animation = append(scene.animation, ec.Animate)
	}
	return scene, nil
}

// mesh uploads each distinct mesh source once.
func (s *Scene) mesh(dev gfx.Device, source string) (*core.Mesh, error) {
	if m, ok := s.meshes[source]; ok {
		return m, nil
	}
	data, err := meshData(source)
	if err != nil {
		return nil, err
	}
	m, err := core.UploadMesh(dev, source, data)
	if err != nil {
		return nil, err
	}
	s.meshes[source] = m
	return m, nil
}

func meshData(source string) (*core.MeshData, error) {
	switch source {
	case MeshCube:
		return core.Cube(), nil
	case MeshSphere:
		return core.Sphere(24, 32), nil
	case MeshHelix:
		return core.Helix(3, 180, 0.5, 0.1), nil
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return core.ParseOBJ(f)
}

// Animate poses every animated entity for the given total time in seconds.
func (s *Scene) Animate(total float32) {
	sin := float32(math.Sin(float64(total)))
	for i, e := range s.Entities {
		base := s.base[i]
		switch s.animation[i] {
		case AnimateSpin:
			e.Transform.Rotation[1] = base.Rotation[1] + spinRate*total
		case AnimateBob:
			e.Transform.Position[1] = sin
		case AnimatePulse:
			e.Transform.Scale = mgl32.Vec3{sin + 1, sin + 1, sin + 1}
		default:
			continue
		}
		e.Touch()
	}
}

// Draw renders every entity that has a mesh and a material with the opaque
// geometry state.
func (s *Scene) Draw(ctx gfx.Context, cam *core.Camera) error {
	gfx.ResetState(ctx)
	view, proj := cam.View(), cam.Projection()
	for _, e := range s.Entities {
		if e.Mesh == nil || e.Material == nil {
			continue
		}
		e.FinalizeMatrix()
		if err := e.Material.Prepare(ctx, e.World(), view, proj, s.Lights); err != nil {
			return err
		}
		if err := e.Mesh.Draw(ctx); err != nil {
			return fmt.Errorf("entity %q: %w", e.Name, err)
		}
	}
	return nil
}

func (s *Scene) Release() {
	for k, m := range s.meshes {
		m.Release()
		delete(s.meshes, k)
	}
}

// SceneModule builds the Scene from the Config resource and animates it in
// Update. Meshes are uploaded only when a Graphics resource exists.
type SceneModule struct{}

func (m SceneModule) Install(app *App, cmd *Commands) {
	cfg := DefaultConfig()
	if c := Resource[Config](app); c != nil {
		cfg = *c
	}
	scene, err := BuildScene(cfg, Resource[Graphics](app))
	if err != nil {
		panic(err)
	}
	app.Logger().Infof("scene: %d entities, %d lights", len(scene.Entities), len(scene.Lights))
	cmd.AddResources(scene)
	cmd.OnShutdown(scene.Release)
	cmd.UseSystem(System(animateSceneSystem).InStage(Update))
}

func animateSceneSystem(scene *Scene, t *Time) {
	scene.Animate(t.TotalSeconds())
}
