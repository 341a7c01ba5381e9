// Package dedup provides content-based deduplication identity for HyperPart.
//
// Files are reduced to Blocks by hashing their content with SHA-256: two files
// with byte-identical content always map to the same Fingerprint and therefore
// to a single stored Block. The Index tracks every fingerprint observed during
// a run together with the content that produced it, which lets it detect the
// (astronomically unlikely) case of two different contents colliding on the
// same fingerprint. A collision would silently merge unrelated files, so it is
// treated as a fatal integrity failure rather than a recoverable error.
//
// The Index also carries the counters the deduplication metrics are derived
// from: how many files were ingested in total versus how many unique blocks
// they collapsed into.
package dedup
