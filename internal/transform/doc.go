// Package transform performs the per-photo resize and re-encode step.
package transform
