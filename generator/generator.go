package generator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ruteri/cfn-random-string/interfaces"
)

// Generator produces hex-encoded random secrets. It is safe for concurrent use
// as long as its entropy source is.
type Generator struct {
	entropy io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithEntropySource replaces crypto/rand.Reader. Only tests should need this;
// the source must be cryptographically secure.
func WithEntropySource(r io.Reader) Option {
	return func(g *Generator) {
		g.entropy = r
	}
}

// NewGenerator creates a Generator reading from crypto/rand.Reader.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{entropy: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ interfaces.ResourceHandler = (*Generator)(nil)

// Validate accepts every request.
func (g *Generator) Validate(_ *interfaces.ProvisioningRequest) error {
	return nil
}

// Create generates a new secret of the requested length.
func (g *Generator) Create(_ context.Context, req *interfaces.ProvisioningRequest) (*interfaces.ProvisioningResult, error) {
	length := interfaces.DefaultLength
	if req != nil {
		length = req.ResourceProperties.Length.Resolve()
	}

	secret, err := g.Generate(length)
	if err != nil {
		return nil, err
	}
	return &interfaces.ProvisioningResult{String: secret}, nil
}

// Update generates a new secret exactly like Create.
func (g *Generator) Update(ctx context.Context, req *interfaces.ProvisioningRequest) (*interfaces.ProvisioningResult, error) {
	return g.Create(ctx, req)
}

// Delete does nothing.
func (g *Generator) Delete(_ context.Context, _ *interfaces.ProvisioningRequest) error {
	return nil
}

// Generate reads n random bytes and returns them as a lowercase hex string of
// 2*n characters. A short or failed read is reported as ErrEntropySource.
func (g *Generator) Generate(n int) (string, error) {
	if n < 0 || n > interfaces.MaxLength {
		return "", fmt.Errorf("%w: %d out of range [0, %d]", interfaces.ErrInvalidLength, n, interfaces.MaxLength)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(g.entropy, buf); err != nil {
		return "", fmt.Errorf("%w: %w", interfaces.ErrEntropySource, err)
	}
	return hex.EncodeToString(buf), nil
}
