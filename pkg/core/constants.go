package core

// Epsilon is the geometric tolerance used for self-intersection offsets,
// connection visibility checks and masked-surface retrace advances.
const Epsilon = 1e-9

// MissingMaterialColor is the albedo assigned to the fallback material
// substituted for unset material slots. The loud magenta makes missing
// assignments visible in rendered output.
var MissingMaterialColor = Vec3{X: 1000, Y: 0, Z: 1000}
