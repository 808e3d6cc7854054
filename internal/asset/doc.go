// Package asset manages the lifecycle of device 3D model files: the
// shared preload library, per-device owned copies and orphan cleanup.
package asset
