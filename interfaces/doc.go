// Package interfaces defines the types shared between the random string
// generator, the custom resource provider and the HTTP server.
//
// ResourceHandler is the lifecycle contract a custom resource implements.
// ProvisioningRequest is the typed form of the event properties: Length
// decodes from either a JSON number or a numeric string, and an unset
// Length resolves to DefaultLength bytes.
package interfaces
