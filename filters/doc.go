// Package filters implements the classical, handle-free styles.
//
// Both filters take the raw uploaded bytes, work at the source resolution and
// return PNG bytes. They are pure and deterministic: the same input always
// yields the same output.
package filters
