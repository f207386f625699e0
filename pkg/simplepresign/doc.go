// Package simplepresign generates time-limited, SigV4-signed URLs for
// objects in S3-compatible stores using the query-parameter (presigned URL)
// signing scheme with an unsigned payload.
//
// The Signer is a pure function of its inputs plus a clock: given resolved
// endpoint and region, account credentials, and a request description it
// deterministically assembles the canonical request, derives the signing key
// chain, and returns a ready-to-use URL. It performs no network I/O and holds
// no mutable state, so a single Signer is safe for concurrent use.
//
// Endpoint and region discovery for Backblaze B2 lives in the b2 subpackage;
// the signing logic itself is provider-agnostic.
package simplepresign
