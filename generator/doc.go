// Package generator implements the random string custom resource.
//
// On create and update it draws Length bytes (default 128) from a
// cryptographically secure source and returns them hex-encoded under the
// String attribute, so the output is always twice as long as the byte count.
// Delete and Validate are no-ops that always succeed. Lengths above
// interfaces.MaxLength (1 MiB) are rejected with ErrInvalidLength when the
// event is decoded, before any bytes are drawn.
//
// The generator keeps no state between calls. Update does not preserve the
// previous value; every call produces a new secret.
package generator
