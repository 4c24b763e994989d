// Package ui adapts structured loggers to the capabilities the pipeline core
// expects and renders step lifecycle events as human-readable messages.
package ui
