// Package scene is the rendering surface experiments draw into.
//
// Nodes live in an [Arena] and are addressed by generation-stamped
// [Handle] values instead of pointers, so a removed effect or trail line
// can never be touched again through a handle that outlived it. Removing a
// node disposes its whole subtree. Hosts render by walking the arena.
package scene
