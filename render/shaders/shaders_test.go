package shaders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourcesDeclareBothStages(t *testing.T) {
	for name, src := range map[string]string{"mesh": MeshWGSL, "particle": ParticleWGSL} {
		assert.Contains(t, src, "fn "+VertexEntry+"(", name)
		assert.Contains(t, src, "fn "+FragmentEntry+"(", name)
		assert.Contains(t, src, "@group(0) @binding(0) var<uniform>", name)
	}
}
