// Package iox provides small io.Reader/io.Writer decorators used around
// streaming transfers: progress reporting, shadow copies and offset skipping.
// None of them add concurrency; they are plain pass-through adapters.
package iox
