// Package b2 resolves the S3-compatible endpoint and region for a Backblaze
// B2 account via the b2_authorize_account API call. The signing engine only
// consumes the resolved (endpoint, region) pair; this package is the one
// place that knows how to obtain it.
package b2
