package render

import rl "github.com/gen2brain/raylib-go/raylib"

const bloomVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec4 vertexColor;
uniform mat4 mvp;
out vec2 fragTexCoord;
out vec4 fragColor;
void main() {
  fragTexCoord = vertexTexCoord;
  fragColor = vertexColor;
  gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`

// bloomFS adds a blurred bright-pass of the frame back onto itself.
const bloomFS = `#version 330
in vec2 fragTexCoord;
in vec4 fragColor;
uniform sampler2D texture0;
uniform vec2 resolution;
uniform float threshold;
uniform float strength;
out vec4 finalColor;
vec3 bright(vec2 uv) {
  vec3 c = texture(texture0, uv).rgb;
  float l = dot(c, vec3(0.2126, 0.7152, 0.0722));
  return c * smoothstep(threshold, threshold + 0.1, l);
}
void main() {
  vec4 base = texture(texture0, fragTexCoord);
  vec2 px = 1.0 / resolution;
  vec3 sum = vec3(0.0);
  float weight = 0.0;
  for (int x = -4; x <= 4; x++) {
    for (int y = -4; y <= 4; y++) {
      float w = exp(-float(x * x + y * y) / 8.0);
      sum += bright(fragTexCoord + vec2(x, y) * px * 2.0) * w;
      weight += w;
    }
  }
  finalColor = vec4(base.rgb + sum / weight * strength * 4.0, base.a) * fragColor;
}
`

// ensureTarget creates the offscreen target and bloom shader. false means bloom is unavailable.
func (r *Renderer) ensureTarget() bool {
	if r.width <= 0 || r.height <= 0 {
		return false
	}
	if !r.hasTarget {
		r.target = rl.LoadRenderTexture(int32(r.width), int32(r.height))
		r.hasTarget = true
	}
	if !rl.IsShaderValid(r.bloom) {
		r.bloom = rl.LoadShaderFromMemory(bloomVS, bloomFS)
		if !rl.IsShaderValid(r.bloom) {
			r.log.Warn().Msg("bloom shader failed to compile, drawing without bloom")
			r.opts.Bloom = false
			return false
		}
	}
	return true
}

// composite draws the offscreen frame to the screen through the bloom shader.
func (r *Renderer) composite() {
	res := [2]float32{float32(r.width), float32(r.height)}
	if loc := rl.GetShaderLocation(r.bloom, "resolution"); loc >= 0 {
		rl.SetShaderValueV(r.bloom, loc, res[:], rl.ShaderUniformVec2, 1)
	}
	if loc := rl.GetShaderLocation(r.bloom, "threshold"); loc >= 0 {
		rl.SetShaderValue(r.bloom, loc, []float32{r.opts.BloomThreshold}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(r.bloom, "strength"); loc >= 0 {
		rl.SetShaderValue(r.bloom, loc, []float32{r.opts.BloomStrength}, rl.ShaderUniformFloat)
	}
	rl.ClearBackground(rl.Black)
	rl.BeginShaderMode(r.bloom)
	// render textures are stored upside down
	src := rl.NewRectangle(0, 0, float32(r.target.Texture.Width), -float32(r.target.Texture.Height))
	rl.DrawTextureRec(r.target.Texture, src, rl.NewVector2(0, 0), rl.White)
	rl.EndShaderMode()
}
