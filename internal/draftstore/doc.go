// Package draftstore holds the durable key-value backends booking wizard
// drafts are mirrored to. Every backend stores the draft as an opaque string
// and reports found=false for a missing or expired key.
package draftstore
