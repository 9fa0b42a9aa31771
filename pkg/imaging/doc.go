// Package imaging validates uploaded entity images and transcodes them to
// WebP for the blob store. Transcoding is CPU-heavy, so a bounded worker
// gate keeps concurrent conversions from starving request handling.
package imaging
