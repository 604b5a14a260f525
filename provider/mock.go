package provider

import (
	"context"

	"github.com/ruteri/cfn-random-string/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockResourceHandler is a testify mock of interfaces.ResourceHandler.
type MockResourceHandler struct {
	mock.Mock
}

func (m *MockResourceHandler) Validate(req *interfaces.ProvisioningRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockResourceHandler) Create(ctx context.Context, req *interfaces.ProvisioningRequest) (*interfaces.ProvisioningResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.ProvisioningResult), args.Error(1)
}

func (m *MockResourceHandler) Update(ctx context.Context, req *interfaces.ProvisioningRequest) (*interfaces.ProvisioningResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.ProvisioningResult), args.Error(1)
}

func (m *MockResourceHandler) Delete(ctx context.Context, req *interfaces.ProvisioningRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
