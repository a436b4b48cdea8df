package ember

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/gekko3d/ember/render/core"
	"github.com/gekko3d/ember/render/particle"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// ErrConfig is returned for a config file that cannot be parsed or is invalid.
var ErrConfig = errors.New("ember: invalid config")

type Config struct {
	Debug    bool                    `toml:"debug"`
	Window   WindowConfig            `toml:"window"`
	Camera   CameraConfig            `toml:"camera"`
	Emitter  EmitterConfig           `toml:"emitter"`
	Lights   []core.DirectionalLight `toml:"lights"`
	Entities []EntityConfig          `toml:"entities"`
	Textures []TextureConfig         `toml:"textures"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type CameraConfig struct {
	Position    mgl32.Vec3 `toml:"position"`
	Yaw         float32    `toml:"yaw"`
	Pitch       float32    `toml:"pitch"`
	Speed       float32    `toml:"speed"`
	Sensitivity float32    `toml:"sensitivity"`
}

type EmitterConfig struct {
	particle.Config

	// Texture names an entry of [[textures]]; empty uses the built-in soft dot
	// even when [[textures]] does not declare it.
	Texture        string `toml:"texture"`
	AllowOverwrite bool   `toml:"allow_overwrite"`
}

// Options translates the emitter flags into particle options.
func (e EmitterConfig) Options() []particle.Option {
	if e.AllowOverwrite {
		return []particle.Option{particle.AllowOverwrite()}
	}
	return nil
}

// Mesh kinds understood by EntityConfig.Mesh besides a path to an .obj file.
const (
	MeshCube   = "cube"
	MeshSphere = "sphere"
	MeshHelix  = "helix"
)

// Animations understood by EntityConfig.Animate.
const (
	AnimateSpin  = "spin"
	AnimateBob   = "bob"
	AnimatePulse = "pulse"
)

type EntityConfig struct {
	Name     string     `toml:"name"`
	Mesh     string     `toml:"mesh"`
	Texture  string     `toml:"texture"`
	Position mgl32.Vec3 `toml:"position"`
	Rotation mgl32.Vec3 `toml:"rotation"` // radians, XYZ
	Scale    mgl32.Vec3 `toml:"scale"`
	Animate  string     `toml:"animate"`
}

// Built-in texture names; a [[textures]] entry without a path may use them.
const (
	TextureChecker = "checker"
	TextureSoftDot = "soft_dot"
)

type TextureConfig struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// DefaultConfig is the demo scene: three lit entities and a fire-coloured
// emitter drifting up and to the left.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "Ember", VSync: true},
		Camera: CameraConfig{
			Position:    mgl32.Vec3{0, 0, 5},
			Speed:       5,
			Sensitivity: 0.1,
		},
		Emitter: EmitterConfig{
			Config: particle.Config{
				MaxParticles:  1000,
				SpawnRate:     100,
				Lifetime:      5,
				StartSize:     0.1,
				EndSize:       5.0,
				StartColor:    mgl32.Vec4{1, 0.1, 0.1, 0.2},
				EndColor:      mgl32.Vec4{1, 0.6, 0.1, 0},
				StartVelocity: mgl32.Vec3{-2, 2, 0},
				StartPosition: mgl32.Vec3{2, 0, 0},
				Acceleration:  mgl32.Vec3{0, -1, 0},
			},
			Texture: TextureSoftDot,
		},
		Lights: []core.DirectionalLight{
			{Ambient: mgl32.Vec4{0.1, 0.1, 0.1, 1}, Diffuse: mgl32.Vec4{1, 0, 0, 1}, Direction: mgl32.Vec3{0, -1, 0}},
			{Ambient: mgl32.Vec4{0.1, 0.1, 0.1, 1}, Diffuse: mgl32.Vec4{1, 1, 1, 1}, Direction: mgl32.Vec3{0, 0, -1}},
		},
		Entities: []EntityConfig{
			{Name: "sphere", Mesh: MeshSphere, Texture: TextureSoftDot, Position: mgl32.Vec3{1.5, 0, 0}, Scale: mgl32.Vec3{1, 1, 1}, Animate: AnimateSpin},
			{Name: "cube", Mesh: MeshCube, Texture: TextureChecker, Position: mgl32.Vec3{-1.5, 0, 0}, Scale: mgl32.Vec3{1.5, 1.5, 1}, Animate: AnimateBob},
			{Name: "helix", Mesh: MeshHelix, Texture: TextureChecker, Position: mgl32.Vec3{0, -1.5, 0}, Rotation: mgl32.Vec3{0, 0, 1}, Scale: mgl32.Vec3{1, 1, 1}, Animate: AnimatePulse},
		},
		Textures: []TextureConfig{
			{Name: TextureChecker},
			{Name: TextureSoftDot},
		},
	}
}

// LoadConfig reads a TOML config from path on top of DefaultConfig. A missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return ParseConfig(bytes.NewReader(data))
}

// ParseConfig decodes TOML from r on top of DefaultConfig and validates it.
// Tables given in the file replace the default lists wholesale.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	// Array tables append on decode; start them empty so the file wins.
	defaults := cfg
	cfg.Lights, cfg.Entities, cfg.Textures = nil, nil, nil

	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("%w: line %d column %d: %s", ErrConfig, row, col, derr.Error())
		}
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if cfg.Lights == nil {
		cfg.Lights = defaults.Lights
	}
	if cfg.Entities == nil {
		cfg.Entities = defaults.Entities
	}
	if cfg.Textures == nil {
		cfg.Textures = defaults.Textures
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrConfig, c.Window.Width, c.Window.Height)
	}
	if len(c.Lights) > core.MaxLights {
		return fmt.Errorf("%w: at most %d lights, got %d", ErrConfig, core.MaxLights, len(c.Lights))
	}

	if err := c.Emitter.Config.ValidateWith(c.Emitter.Options()...); err != nil {
		return fmt.Errorf("%w: emitter: %w", ErrConfig, err)
	}

	textures := make(map[string]bool, len(c.Textures))
	for _, t := range c.Textures {
		if t.Name == "" {
			return fmt.Errorf("%w: texture without a name", ErrConfig)
		}
		if textures[t.Name] {
			return fmt.Errorf("%w: duplicate texture %q", ErrConfig, t.Name)
		}
		if t.Path == "" && t.Name != TextureChecker && t.Name != TextureSoftDot {
			return fmt.Errorf("%w: texture %q needs a path", ErrConfig, t.Name)
		}
		textures[t.Name] = true
	}
	if c.Emitter.Texture != "" && !textures[c.Emitter.Texture] {
		return fmt.Errorf("%w: emitter texture %q is not declared", ErrConfig, c.Emitter.Texture)
	}

	for _, e := range c.Entities {
		switch {
		case e.Mesh == MeshCube, e.Mesh == MeshSphere, e.Mesh == MeshHelix:
		case strings.HasSuffix(strings.ToLower(e.Mesh), ".obj"):
		default:
			return fmt.Errorf("%w: entity %q: unknown mesh %q", ErrConfig, e.Name, e.Mesh)
		}
		if e.Texture != "" && !textures[e.Texture] {
			return fmt.Errorf("%w: entity %q: texture %q is not declared", ErrConfig, e.Name, e.Texture)
		}
		switch e.Animate {
		case "", AnimateSpin, AnimateBob, AnimatePulse:
		default:
			return fmt.Errorf("%w: entity %q: unknown animation %q", ErrConfig, e.Name, e.Animate)
		}
	}
	return nil
}
