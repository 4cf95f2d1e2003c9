package opengl

// ── Capture shaders ──────────────────────────────────────────────────────────

// cubeVertSrc is shared by every cube capture pass. localPos is the sampling
// direction for the face fragment.
const cubeVertSrc = `
#version 410 core
layout(location = 0) in vec3 vertexPosition;

uniform mat4 projection;
uniform mat4 view;

out vec3 localPos;

void main() {
    localPos = vertexPosition;
    gl_Position = projection * view * vec4(vertexPosition, 1.0);
}
` + "\x00"

// equirectFragSrc maps a direction to (atan(z, x), asin(y)) on the panorama.
const equirectFragSrc = `
#version 410 core
in vec3 localPos;
out vec4 outColor;

uniform sampler2D equirectangularMap;

const vec2 invAtan = vec2(0.1591, 0.3183);

vec2 sampleSphericalMap(vec3 v) {
    vec2 uv = vec2(atan(v.z, v.x), asin(v.y));
    uv *= invAtan;
    uv += 0.5;
    return uv;
}

void main() {
    vec2 uv = sampleSphericalMap(normalize(localPos));
    outColor = vec4(texture(equirectangularMap, uv).rgb, 1.0);
}
` + "\x00"

// irradianceFragSrc convolves the hemisphere around the normal with a
// cosine weight.
const irradianceFragSrc = `
#version 410 core
in vec3 localPos;
out vec4 outColor;

uniform samplerCube environmentMap;

const float PI = 3.14159265359;

void main() {
    vec3 normal = normalize(localPos);
    vec3 irradiance = vec3(0.0);

    vec3 up = vec3(0.0, 1.0, 0.0);
    vec3 right = normalize(cross(up, normal));
    up = normalize(cross(normal, right));

    float sampleDelta = 0.025;
    float nrSamples = 0.0;
    for (float phi = 0.0; phi < 2.0 * PI; phi += sampleDelta) {
        for (float theta = 0.0; theta < 0.5 * PI; theta += sampleDelta) {
            vec3 tangentSample = vec3(sin(theta) * cos(phi), sin(theta) * sin(phi), cos(theta));
            vec3 sampleVec = tangentSample.x * right + tangentSample.y * up + tangentSample.z * normal;
            irradiance += textureLod(environmentMap, sampleVec, 0.0).rgb * cos(theta) * sin(theta);
            nrSamples++;
        }
    }
    irradiance = PI * irradiance * (1.0 / nrSamples);
    outColor = vec4(irradiance, 1.0);
}
` + "\x00"

// ggxCommon is shared by the prefilter and BRDF programs.
const ggxCommon = `
const float PI = 3.14159265359;

float radicalInverseVdC(uint bits) {
    bits = (bits << 16u) | (bits >> 16u);
    bits = ((bits & 0x55555555u) << 1u) | ((bits & 0xAAAAAAAAu) >> 1u);
    bits = ((bits & 0x33333333u) << 2u) | ((bits & 0xCCCCCCCCu) >> 2u);
    bits = ((bits & 0x0F0F0F0Fu) << 4u) | ((bits & 0xF0F0F0F0u) >> 4u);
    bits = ((bits & 0x00FF00FFu) << 8u) | ((bits & 0xFF00FF00u) >> 8u);
    return float(bits) * 2.3283064365386963e-10;
}

vec2 hammersley(uint i, uint n) {
    return vec2(float(i) / float(n), radicalInverseVdC(i));
}

vec3 importanceSampleGGX(vec2 xi, vec3 n, float roughness) {
    float a = roughness * roughness;
    float phi = 2.0 * PI * xi.x;
    float cosTheta = sqrt((1.0 - xi.y) / (1.0 + (a * a - 1.0) * xi.y));
    float sinTheta = sqrt(1.0 - cosTheta * cosTheta);

    vec3 h = vec3(cos(phi) * sinTheta, sin(phi) * sinTheta, cosTheta);

    vec3 up = abs(n.z) < 0.999 ? vec3(0.0, 0.0, 1.0) : vec3(1.0, 0.0, 0.0);
    vec3 tangent = normalize(cross(up, n));
    vec3 bitangent = cross(n, tangent);
    return normalize(tangent * h.x + bitangent * h.y + n * h.z);
}

float distributionGGX(float nDotH, float roughness) {
    float a = roughness * roughness;
    float a2 = a * a;
    float denom = nDotH * nDotH * (a2 - 1.0) + 1.0;
    return a2 / (PI * denom * denom);
}
`

// prefilterFragSrc blurs the environment for one roughness level. Samples
// read from a coarser source mip where the PDF is low to avoid fireflies.
const prefilterFragSrc = `
#version 410 core
in vec3 localPos;
out vec4 outColor;

uniform samplerCube environmentMap;
uniform float roughness;
uniform float sourceSize;
` + ggxCommon + `
void main() {
    vec3 n = normalize(localPos);
    vec3 r = n;
    vec3 v = r;

    const uint SAMPLE_COUNT = 1024u;
    float totalWeight = 0.0;
    vec3 prefiltered = vec3(0.0);
    for (uint i = 0u; i < SAMPLE_COUNT; ++i) {
        vec2 xi = hammersley(i, SAMPLE_COUNT);
        vec3 h = importanceSampleGGX(xi, n, roughness);
        vec3 l = normalize(2.0 * dot(v, h) * h - v);

        float nDotL = max(dot(n, l), 0.0);
        if (nDotL > 0.0) {
            float nDotH = max(dot(n, h), 0.0);
            float hDotV = max(dot(h, v), 0.0);
            float d = distributionGGX(nDotH, roughness);
            float pdf = d * nDotH / (4.0 * hDotV) + 0.0001;

            float saTexel = 4.0 * PI / (6.0 * sourceSize * sourceSize);
            float saSample = 1.0 / (float(SAMPLE_COUNT) * pdf + 0.0001);
            float mipLevel = roughness == 0.0 ? 0.0 : 0.5 * log2(saSample / saTexel);

            prefiltered += textureLod(environmentMap, l, mipLevel).rgb * nDotL;
            totalWeight += nDotL;
        }
    }
    outColor = vec4(prefiltered / totalWeight, 1.0);
}
` + "\x00"

const brdfVertSrc = `
#version 410 core
layout(location = 0) in vec3 vertexPosition;
layout(location = 1) in vec2 vertexTexCoord;

out vec2 fragTexCoord;

void main() {
    fragTexCoord = vertexTexCoord;
    gl_Position = vec4(vertexPosition, 1.0);
}
` + "\x00"

// brdfFragSrc integrates the split-sum scale and bias over (NdotV, roughness).
const brdfFragSrc = `
#version 410 core
in vec2 fragTexCoord;
out vec2 outColor;
` + ggxCommon + `
float geometrySchlickGGX(float nDotV, float roughness) {
    float k = (roughness * roughness) / 2.0;
    return nDotV / (nDotV * (1.0 - k) + k);
}

float geometrySmith(float nDotV, float nDotL, float roughness) {
    return geometrySchlickGGX(nDotV, roughness) * geometrySchlickGGX(nDotL, roughness);
}

vec2 integrateBRDF(float nDotV, float roughness) {
    vec3 v = vec3(sqrt(1.0 - nDotV * nDotV), 0.0, nDotV);
    float a = 0.0;
    float b = 0.0;
    vec3 n = vec3(0.0, 0.0, 1.0);

    const uint SAMPLE_COUNT = 1024u;
    for (uint i = 0u; i < SAMPLE_COUNT; ++i) {
        vec2 xi = hammersley(i, SAMPLE_COUNT);
        vec3 h = importanceSampleGGX(xi, n, roughness);
        vec3 l = normalize(2.0 * dot(v, h) * h - v);

        float nDotL = max(l.z, 0.0);
        float nDotH = max(h.z, 0.0);
        float vDotH = max(dot(v, h), 0.0);

        if (nDotL > 0.0) {
            float g = geometrySmith(nDotV, nDotL, roughness);
            float gVis = (g * vDotH) / (nDotH * nDotV);
            float fc = pow(1.0 - vDotH, 5.0);
            a += (1.0 - fc) * gVis;
            b += fc * gVis;
        }
    }
    return vec2(a, b) / float(SAMPLE_COUNT);
}

void main() {
    outColor = integrateBRDF(fragTexCoord.x, fragTexCoord.y);
}
` + "\x00"

// ── Skybox ───────────────────────────────────────────────────────────────────

// skyVertSrc strips the view translation and forces depth to the far plane
// with the xyww trick.
const skyVertSrc = `
#version 410 core
layout(location = 0) in vec3 vertexPosition;

uniform mat4 projection;
uniform mat4 view;

out vec3 fragPosition;

void main() {
    fragPosition = vertexPosition;
    mat4 rotView = mat4(mat3(view));
    vec4 clipPos = projection * rotView * vec4(vertexPosition, 1.0);
    gl_Position = clipPos.xyww;
}
` + "\x00"

// skyFragSrc: skyMode 0 shows the sharp environment, 1 a blurred mip of it,
// 2 whatever cubemap is bound (the irradiance map). The noise term breaks up
// banding in the gradients.
const skyFragSrc = `
#version 410 core
in vec3 fragPosition;
out vec4 outColor;

uniform samplerCube environmentMap;
uniform vec2 resolution;
uniform int skyMode;
uniform float blurLod;

float random(vec2 st) {
    return fract(sin(dot(st, vec2(12.9898, 78.233))) * 43758.5453123);
}

void main() {
    vec3 dir = normalize(fragPosition);
    vec3 color;
    if (skyMode == 1) {
        color = textureLod(environmentMap, dir, blurLod).rgb;
    } else {
        color = textureLod(environmentMap, dir, 0.0).rgb;
    }

    color = color / (color + vec3(1.0));
    color = pow(color, vec3(1.0 / 2.2));

    vec2 uv = gl_FragCoord.xy / max(resolution, vec2(1.0));
    color += (random(uv) - 0.5) / 255.0;

    outColor = vec4(color, 1.0);
}
` + "\x00"

// ── PBR program ──────────────────────────────────────────────────────────────

const pbrVertSrc = `
#version 410 core
layout(location = 0) in vec3 vertexPosition;
layout(location = 1) in vec3 vertexNormal;
layout(location = 2) in vec2 vertexTexCoord;
layout(location = 4) in vec3 vertexTangent;
layout(location = 5) in vec3 vertexBitangent;

uniform mat4 mvp;
uniform mat4 mMatrix;

out vec3 fragPosition;
out vec2 fragTexCoord;
out vec3 fragNormal;
out vec3 fragTangent;
out vec3 fragBinormal;

void main() {
    fragPosition = vec3(mMatrix * vec4(vertexPosition, 1.0));
    fragTexCoord = vertexTexCoord;

    mat3 normalMatrix = transpose(inverse(mat3(mMatrix)));
    fragNormal = normalize(normalMatrix * vertexNormal);
    fragTangent = normalize(normalMatrix * vertexTangent);
    fragTangent = normalize(fragTangent - dot(fragTangent, fragNormal) * fragNormal);
    fragBinormal = normalize(normalMatrix * vertexBitangent);

    gl_Position = mvp * vec4(vertexPosition, 1.0);
}
` + "\x00"

// pbrFragSrc is the single feature-flagged shading program. Roughness below
// MinRoughness is clamped to keep the GGX lobe finite.
const pbrFragSrc = `
#version 410 core
#define MAX_LIGHTS 4
#define LIGHT_DIRECTIONAL 0
#define LIGHT_POINT 1
#define MAX_REFLECTION_LOD 4.0
#define MIN_ROUGHNESS 0.04
#define PI 3.14159265359

struct MaterialProperty {
    vec3 color;
    int useSampler;
    sampler2D sampler;
};

struct Light {
    int enabled;
    int type;
    vec3 position;
    vec3 target;
    vec4 color;
};

in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
in vec3 fragTangent;
in vec3 fragBinormal;

out vec4 outColor;

uniform MaterialProperty albedo;
uniform MaterialProperty normals;
uniform MaterialProperty metalness;
uniform MaterialProperty roughness;
uniform MaterialProperty ao;
uniform MaterialProperty emission;
uniform MaterialProperty height;

uniform samplerCube irradianceMap;
uniform samplerCube prefilterMap;
uniform sampler2D brdfLUT;

uniform Light lights[MAX_LIGHTS];
uniform vec3 viewPos;

uniform int renderMode;
uniform int useNormalMapping;
uniform int useIBL;
uniform int legacyDirectional;
uniform float parallaxScale;

vec2 parallaxMapping(vec2 texCoords, vec3 viewDir) {
    float h = texture(height.sampler, texCoords).r;
    vec2 p = viewDir.xy / max(viewDir.z, 0.05) * (h * parallaxScale);
    return texCoords - p;
}

float distributionGGX(vec3 n, vec3 h, float r) {
    float a = r * r;
    float a2 = a * a;
    float nDotH = max(dot(n, h), 0.0);
    float denom = nDotH * nDotH * (a2 - 1.0) + 1.0;
    return a2 / (PI * denom * denom);
}

float geometrySchlickGGX(float nDotV, float r) {
    float k = ((r + 1.0) * (r + 1.0)) / 8.0;
    return nDotV / (nDotV * (1.0 - k) + k);
}

float geometrySmith(vec3 n, vec3 v, vec3 l, float r) {
    return geometrySchlickGGX(max(dot(n, v), 0.0), r) * geometrySchlickGGX(max(dot(n, l), 0.0), r);
}

vec3 fresnelSchlick(float cosTheta, vec3 f0) {
    return f0 + (1.0 - f0) * pow(1.0 - clamp(cosTheta, 0.0, 1.0), 5.0);
}

vec3 fresnelSchlickRoughness(float cosTheta, vec3 f0, float r) {
    return f0 + (max(vec3(1.0 - r), f0) - f0) * pow(1.0 - clamp(cosTheta, 0.0, 1.0), 5.0);
}

vec3 sampleProperty(MaterialProperty p, vec2 uv) {
    if (p.useSampler == 1) return texture(p.sampler, uv).rgb;
    return p.color;
}

void main() {
    mat3 tbn = mat3(fragTangent, fragBinormal, fragNormal);
    vec3 view = normalize(viewPos - fragPosition);

    vec2 uv = fragTexCoord;
    if (height.useSampler == 1) {
        uv = parallaxMapping(fragTexCoord, normalize(transpose(tbn) * view));
    }

    vec3 baseColor = sampleProperty(albedo, uv);
    float metal = clamp(sampleProperty(metalness, uv).r, 0.0, 1.0);
    float rough = clamp(sampleProperty(roughness, uv).r, MIN_ROUGHNESS, 1.0);
    float occlusion = sampleProperty(ao, uv).r;
    vec3 emissive = sampleProperty(emission, uv);

    vec3 normal = normalize(fragNormal);
    if (useNormalMapping == 1 && normals.useSampler == 1) {
        vec3 tn = texture(normals.sampler, uv).rgb * 2.0 - 1.0;
        normal = normalize(tbn * tn);
    }

    vec3 f0 = mix(vec3(0.04), baseColor, metal);

    vec3 lo = vec3(0.0);
    for (int i = 0; i < MAX_LIGHTS; i++) {
        if (lights[i].enabled == 0) continue;

        vec3 l;
        float attenuation = 1.0;
        if (lights[i].type == LIGHT_POINT || legacyDirectional == 1) {
            vec3 toLight = lights[i].position - fragPosition;
            float dist = length(toLight);
            l = normalize(toLight);
            if (dist > 0.0) attenuation = 1.0 / (dist * dist);
        } else {
            l = normalize(lights[i].position - lights[i].target);
        }
        vec3 radiance = lights[i].color.rgb * attenuation;

        float nDotL = max(dot(normal, l), 0.0);
        if (nDotL == 0.0) continue;

        vec3 h = normalize(view + l);
        float ndf = distributionGGX(normal, h, rough);
        float g = geometrySmith(normal, view, l, rough);
        vec3 f = fresnelSchlick(max(dot(h, view), 0.0), f0);

        vec3 specular = f * ndf * g / (4.0 * max(dot(normal, view), 0.0) * nDotL + 0.001);
        vec3 kD = (vec3(1.0) - f) * (1.0 - metal);

        lo += (kD * baseColor / PI + specular) * radiance * nDotL;
    }

    float nDotV = max(dot(normal, view), 0.0);
    vec3 f = fresnelSchlickRoughness(nDotV, f0, rough);
    vec3 kD = (vec3(1.0) - f) * (1.0 - metal);

    vec3 irradiance = texture(irradianceMap, normal).rgb;
    vec3 r = reflect(-view, normal);
    vec3 reflection = textureLod(prefilterMap, r, rough * MAX_REFLECTION_LOD).rgb;

    vec3 ambient;
    if (useIBL == 1) {
        vec2 brdf = texture(brdfLUT, vec2(nDotV, rough)).rg;
        vec3 diffuse = irradiance * baseColor;
        vec3 specular = reflection * (f * brdf.x + brdf.y);
        ambient = kD * diffuse + specular;
    } else {
        ambient = vec3(0.03) * baseColor;
    }

    vec3 color;
    if (renderMode == 1) color = baseColor;
    else if (renderMode == 2) color = normal;
    else if (renderMode == 3) color = vec3(metal);
    else if (renderMode == 4) color = vec3(rough);
    else if (renderMode == 5) color = vec3(occlusion);
    else if (renderMode == 6) color = emissive;
    else if (renderMode == 7) color = lo;
    else if (renderMode == 8) color = f;
    else if (renderMode == 9) color = irradiance;
    else if (renderMode == 10) color = reflection;
    else {
        color = (ambient + lo) * occlusion + emissive;
        color = color / (color + vec3(1.0));
        color = pow(color, vec3(1.0 / 2.2));
    }

    outColor = vec4(color, 1.0);
}
` + "\x00"

// ── Lines (grid and gizmos) ──────────────────────────────────────────────────

const lineVertSrc = `
#version 410 core
layout(location = 0) in vec3 vertexPosition;
layout(location = 3) in vec4 vertexColor;

uniform mat4 mvp;
uniform vec4 tint;

out vec4 fragColor;

void main() {
    fragColor = vertexColor * tint;
    gl_Position = mvp * vec4(vertexPosition, 1.0);
}
` + "\x00"

const lineFragSrc = `
#version 410 core
in vec4 fragColor;
out vec4 outColor;

void main() {
    outColor = fragColor;
}
` + "\x00"
