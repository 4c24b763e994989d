// Package pipeline loads declarative pipeline definitions and executes their
// shell steps sequentially through the execshell command executor.
package pipeline
