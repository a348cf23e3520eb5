package renderer

const terrainVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uViewProj;
uniform mat4 uModel;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vUV;

void main() {
    vec4 world = uModel * vec4(aPosition, 1.0);
    vWorldPos = world.xyz;
    vNormal = mat3(uModel) * aNormal;
    vUV = aUV;
    gl_Position = uViewProj * world;
}
`

const terrainFragmentShader = `
#version 410 core

in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vUV;

uniform vec3 uLightDir;
uniform float uAmbient;
uniform vec3 uCameraPos;
uniform vec3 uFogColor;
uniform float uFogDistance;
uniform float uHeightScale;

out vec4 FragColor;

vec3 ramp(float h) {
    vec3 water = vec3(0.16, 0.36, 0.62);
    vec3 sand  = vec3(0.80, 0.75, 0.55);
    vec3 grass = vec3(0.28, 0.52, 0.22);
    vec3 rock  = vec3(0.45, 0.40, 0.36);
    vec3 snow  = vec3(0.95, 0.95, 0.97);
    if (h < 0.30) return mix(water, sand, smoothstep(0.25, 0.30, h));
    if (h < 0.45) return mix(sand, grass, smoothstep(0.30, 0.40, h));
    if (h < 0.70) return mix(grass, rock, smoothstep(0.55, 0.70, h));
    return mix(rock, snow, smoothstep(0.75, 0.85, h));
}

void main() {
    vec3 n = normalize(vNormal);
    float diffuse = max(dot(n, normalize(uLightDir)), 0.0);
    vec3 color = ramp(vWorldPos.y / uHeightScale) * (uAmbient + (1.0 - uAmbient) * diffuse);

    if (uFogDistance > 0.0) {
        float fog = clamp(distance(vWorldPos, uCameraPos) / uFogDistance, 0.0, 1.0);
        color = mix(color, uFogColor, fog * fog);
    }
    FragColor = vec4(color, 1.0);
}
`
