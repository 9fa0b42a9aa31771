// Package blob stores transcoded entity images in an S3-compatible bucket
// under tenant-keyed prefixes.
package blob
