package primitives

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// cached holds mesh and material for a primitive type. Created lazily on first Draw.
// texturedMtl is used when drawing with an albedo texture (same mesh, different material).
type cached struct {
	mesh        rl.Mesh
	mtl         rl.Material
	texturedMtl rl.Material
}

// Light is one point light plus an ambient term.
type Light struct {
	Position  [3]float32
	Color     [3]float32
	Intensity float32
	Ambient   float32
}

// DefaultLight matches the landing page: a white point light at (5,5,5), intensity 2, ambient 0.6.
func DefaultLight() Light {
	return Light{
		Position:  [3]float32{5, 5, 5},
		Color:     [3]float32{1, 1, 1},
		Intensity: 2,
		Ambient:   0.6,
	}
}

// Registry maps primitive kinds to mesh+material. Meshes are created on first use
// so that GPU resources are allocated after the window/OpenGL context exists.
type Registry struct {
	cache   map[string]cached
	shaders []rl.Shader
	viewPos [3]float32 // camera position, set each frame for lighting
	light   Light
}

// NewRegistry returns a registry with no primitives. Meshes are created on first Draw.
func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[string]cached),
		light: DefaultLight(),
	}
}

// SetView sets camera position and light for this frame. Call once per frame
// before drawing objects so lit primitives get correct shading.
func (r *Registry) SetView(viewPos [3]float32, light Light) {
	r.viewPos = viewPos
	r.light = light
}

// defaultPrimitiveColor is the albedo tint for untextured cubes and spheres.
var defaultPrimitiveColor = rl.NewColor(200, 200, 210, 255)

// defaultSphereRings and defaultSphereSlices control sphere mesh resolution.
const defaultSphereRings = 32
const defaultSphereSlices = 32

// ensure creates the mesh and both materials for kind if not yet cached.
// Cube side and sphere diameter are 1 so Transform.Scale is the world size.
func (r *Registry) ensure(kind string) (cached, bool) {
	if c, ok := r.cache[kind]; ok {
		return c, true
	}
	var mesh rl.Mesh
	switch kind {
	case "cube":
		mesh = rl.GenMeshCube(1, 1, 1)
	case "sphere":
		mesh = rl.GenMeshSphere(0.5, defaultSphereRings, defaultSphereSlices)
	default:
		return cached{}, false
	}
	mtl := rl.LoadMaterialDefault()
	if albedo := mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = defaultPrimitiveColor
	}
	if shader := rl.LoadShaderFromMemory(litVS, litFS); rl.IsShaderValid(shader) {
		mtl.Shader = shader
		r.shaders = append(r.shaders, shader)
	}
	texturedMtl := rl.LoadMaterialDefault()
	if albedo := texturedMtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = rl.White
	}
	if ts := rl.LoadShaderFromMemory(litVS, litTexturedFS); rl.IsShaderValid(ts) {
		texturedMtl.Shader = ts
		r.shaders = append(r.shaders, ts)
	}
	c := cached{mesh: mesh, mtl: mtl, texturedMtl: texturedMtl}
	r.cache[kind] = c
	return c, true
}

// LitShader returns a new point-light shader for materials outside the registry, such as glTF models.
func LitShader() rl.Shader {
	return rl.LoadShaderFromMemory(litVS, litTexturedFS)
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec2 fragTexCoord;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragTexCoord = vertexTexCoord;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightPos;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float ambient;
out vec4 finalColor;
void main() {
  vec4 tint = colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightPos - fragPosition);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity * 0.5;
  vec3 H = normalize(L + V);
  float spec = pow(max(dot(N, H), 0.0), 48.0) * 0.3 * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(tint.rgb * ambient + diffuse + lightColor * spec, tint.a);
}
`
	// litTexturedFS: same as litFS but tint from albedo texture * colDiffuse.
	litTexturedFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightPos;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float ambient;
uniform sampler2D texture0;
out vec4 finalColor;
void main() {
  vec4 tint = texture(texture0, fragTexCoord) * colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightPos - fragPosition);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity * 0.5;
  vec3 H = normalize(L + V);
  float spec = pow(max(dot(N, H), 0.0), 48.0) * 0.3 * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(tint.rgb * ambient + diffuse + lightColor * spec, tint.a);
}
`
)

// SetLightUniforms sets viewPos and the light on shader (cgo-safe: local arrays).
func (r *Registry) SetLightUniforms(shader rl.Shader) {
	if !rl.IsShaderValid(shader) {
		return
	}
	viewPos := [3]float32{r.viewPos[0], r.viewPos[1], r.viewPos[2]}
	lightPos := [3]float32{r.light.Position[0], r.light.Position[1], r.light.Position[2]}
	lightColor := [3]float32{r.light.Color[0], r.light.Color[1], r.light.Color[2]}
	if loc := rl.GetShaderLocation(shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightColor"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightColor[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightIntensity"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{r.light.Intensity}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "ambient"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{r.light.Ambient}, rl.ShaderUniformFloat)
	}
}

// Matrix converts a column-major mgl32 matrix to raylib's layout. Both store the
// translation in elements 12-14, so fields map one to one.
func Matrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

// Draw draws one primitive of kind ("cube" or "sphere") with the world transform.
// Must be called between BeginMode3D and EndMode3D; unknown kinds are skipped.
func (r *Registry) Draw(kind string, transform mgl32.Mat4) {
	c, ok := r.ensure(kind)
	if !ok {
		return
	}
	r.SetLightUniforms(c.mtl.Shader)
	rl.DrawMesh(c.mesh, c.mtl, Matrix(transform))
}

// DrawWithTexture draws kind with tex as albedo, falling back to the plain material for an invalid texture.
func (r *Registry) DrawWithTexture(kind string, transform mgl32.Mat4, tex rl.Texture2D) {
	if !rl.IsTextureValid(tex) {
		r.Draw(kind, transform)
		return
	}
	c, ok := r.ensure(kind)
	if !ok {
		return
	}
	rl.SetMaterialTexture(&c.texturedMtl, rl.MapAlbedo, tex)
	r.SetLightUniforms(c.texturedMtl.Shader)
	rl.DrawMesh(c.mesh, c.texturedMtl, Matrix(transform))
}

// Unload frees meshes and shaders. The registry can be reused; meshes are recreated on demand.
func (r *Registry) Unload() {
	for _, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
	}
	for _, s := range r.shaders {
		rl.UnloadShader(s)
	}
	r.cache = make(map[string]cached)
	r.shaders = nil
}
