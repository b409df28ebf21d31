package config

// Density bucket of the target device screen.
// ENUM(verylow, low, medium, high, veryhigh, hd, 560, 2hd, 4k)
type Density int

// Encoding requested for generated raster images.
// ENUM(auto, png, jpeg)
type ImageFormat int
