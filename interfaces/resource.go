package interfaces

import "context"

// ResourceHandler implements the lifecycle of one custom resource type.
//
// Validate runs before Create and Update. Delete must tolerate any input,
// including properties that never passed validation.
type ResourceHandler interface {
	Validate(req *ProvisioningRequest) error
	Create(ctx context.Context, req *ProvisioningRequest) (*ProvisioningResult, error)
	Update(ctx context.Context, req *ProvisioningRequest) (*ProvisioningResult, error)
	Delete(ctx context.Context, req *ProvisioningRequest) error
}
