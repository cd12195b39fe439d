// Package formats provides decoders for the external files a scene
// references: Wavefront OBJ polygon meshes and TGA images.
package formats

// Note: OBJ is implemented in obj.go (positions and faces only)
// Note: TGA is implemented in tga.go (true-color, raw and RLE)
