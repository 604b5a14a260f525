// Package provider dispatches CloudFormation custom resource events to the
// handler registered for the event's resource type.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/google/uuid"
	"github.com/ruteri/cfn-random-string/interfaces"
	"github.com/ruteri/cfn-random-string/metrics"
)

var (
	// ErrUnknownResourceType is returned when no handler is registered for the event's resource type.
	ErrUnknownResourceType = errors.New("unknown resource type")

	// ErrUnknownRequestType is returned for request types other than Create, Update and Delete.
	ErrUnknownRequestType = errors.New("unknown request type")
)

// Provider routes lifecycle events to resource handlers.
type Provider struct {
	handlers map[string]interfaces.ResourceHandler
	fallback interfaces.ResourceHandler
	log      *slog.Logger
	newID    func() string
}

// NewProvider creates a Provider with no registered handlers.
func NewProvider(log *slog.Logger) *Provider {
	return &Provider{
		handlers: make(map[string]interfaces.ResourceHandler),
		log:      log,
		newID:    uuid.NewString,
	}
}

// Register binds a handler to a resource type such as "Custom::RandomString".
// Register is not safe to call concurrently with Handle.
func (p *Provider) Register(resourceType string, handler interfaces.ResourceHandler) {
	p.handlers[resourceType] = handler
}

// SetDefault sets the handler used for resource types without a registration.
func (p *Provider) SetDefault(handler interfaces.ResourceHandler) {
	p.fallback = handler
}

func (p *Provider) handlerFor(resourceType string) (interfaces.ResourceHandler, bool) {
	if h, ok := p.handlers[resourceType]; ok {
		return h, true
	}
	if p.fallback != nil {
		return p.fallback, true
	}
	return nil, false
}

// Handle processes one event. Its signature matches cfn.CustomResourceFunction
// so it can be passed to cfn.LambdaWrap directly.
//
// Create assigns a fresh physical resource id; Update and Delete keep the one
// CloudFormation sent. Delete never fails: a missing handler or a handler
// error is logged and reported as success so stacks can always be torn down.
func (p *Provider) Handle(ctx context.Context, event cfn.Event) (physicalResourceID string, data map[string]interface{}, err error) {
	start := time.Now()
	requestType := string(event.RequestType)
	log := p.log.With(
		slog.String("requestType", requestType),
		slog.String("resourceType", event.ResourceType),
		slog.String("logicalResourceId", event.LogicalResourceID),
		slog.String("requestId", event.RequestID))

	defer func() {
		status := string(cfn.StatusSuccess)
		if err != nil {
			status = string(cfn.StatusFailed)
		}
		metrics.RequestsTotal.WithLabelValues(requestType, status).Inc()
		metrics.HandleDuration.WithLabelValues(requestType).Observe(time.Since(start).Seconds())
	}()

	if event.RequestType == cfn.RequestDelete {
		p.handleDelete(ctx, log, event)
		return event.PhysicalResourceID, nil, nil
	}

	handler, ok := p.handlerFor(event.ResourceType)
	if !ok {
		log.Error("No handler registered for resource type")
		return event.PhysicalResourceID, nil, fmt.Errorf("%w: %s", ErrUnknownResourceType, event.ResourceType)
	}

	req, err := decodeRequest(log, event)
	if err != nil {
		log.Warn("Failed to decode resource properties", "err", err)
		return event.PhysicalResourceID, nil, err
	}

	if err := handler.Validate(req); err != nil {
		log.Warn("Validation failed", "err", err)
		return event.PhysicalResourceID, nil, err
	}

	var result *interfaces.ProvisioningResult
	switch event.RequestType {
	case cfn.RequestCreate:
		physicalResourceID = p.physicalIDFor(event)
		result, err = handler.Create(ctx, req)
	case cfn.RequestUpdate:
		physicalResourceID = event.PhysicalResourceID
		result, err = handler.Update(ctx, req)
	default:
		return event.PhysicalResourceID, nil, fmt.Errorf("%w: %q", ErrUnknownRequestType, requestType)
	}
	if err != nil {
		log.Error("Resource handler failed", "err", err)
		return event.PhysicalResourceID, nil, err
	}

	metrics.GeneratedBytesTotal.Add(float64(len(result.String) / 2))
	log.Info("Resource provisioned",
		slog.String("physicalResourceId", physicalResourceID),
		slog.Duration("duration", time.Since(start)))

	return physicalResourceID, result.Data(), nil
}

func (p *Provider) handleDelete(ctx context.Context, log *slog.Logger, event cfn.Event) {
	handler, ok := p.handlerFor(event.ResourceType)
	if !ok {
		log.Warn("No handler registered for resource type, treating delete as done")
		return
	}

	// Properties are not validated on delete; a resource that failed to
	// decode on create must still be removable.
	req, err := decodeRequest(log, event)
	if err != nil {
		req = &interfaces.ProvisioningRequest{}
	}

	if err := handler.Delete(ctx, req); err != nil {
		log.Error("Resource handler failed on delete, ignoring", "err", err)
		return
	}
	log.Info("Resource deleted", slog.String("physicalResourceId", event.PhysicalResourceID))
}

func (p *Provider) physicalIDFor(event cfn.Event) string {
	if event.LogicalResourceID == "" {
		return p.newID()
	}
	return fmt.Sprintf("%s-%s", event.LogicalResourceID, p.newID())
}

// decodeRequest decodes the event properties. Old properties are never used
// to generate anything, and an update rollback carries the rejected values
// there, so they are decoded leniently.
func decodeRequest(log *slog.Logger, event cfn.Event) (*interfaces.ProvisioningRequest, error) {
	props, err := interfaces.DecodeProperties(event.ResourceProperties)
	if err != nil {
		return nil, err
	}
	oldProps, err := interfaces.DecodeProperties(event.OldResourceProperties)
	if err != nil {
		log.Warn("Ignoring undecodable old resource properties", "err", err)
		oldProps = interfaces.Properties{}
	}
	return &interfaces.ProvisioningRequest{
		ResourceProperties:    props,
		OldResourceProperties: oldProps,
	}, nil
}
