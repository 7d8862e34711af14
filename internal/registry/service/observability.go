package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"landregistry/internal/registry/models"
	dErrors "landregistry/pkg/domain-errors"
	audit "landregistry/pkg/platform/audit"
	"landregistry/pkg/requestcontext"
)

// invocation carries what every entry point needs to report on itself.
type invocation struct {
	operation string
	caller    models.Principal
	height    uint64
	start     time.Time
	span      trace.Span
}

func (s *Service) begin(ctx context.Context, operation string, caller models.Principal) (context.Context, *invocation) {
	ctx, span := s.tracer.Start(ctx, "registry."+operation,
		trace.WithAttributes(attribute.String("registry.caller", caller.String())),
	)
	return ctx, &invocation{operation: operation, caller: caller, start: time.Now(), span: span}
}

// stamp draws the invocation's block height. It must run inside RunInTx so
// heights follow the order in which invocations take the lock.
func (s *Service) stamp(txCtx context.Context, inv *invocation) error {
	if s.sequencer == nil {
		return dErrors.New(dErrors.CodeInternal, "block height sequencer not configured")
	}
	h, err := s.sequencer.Next(txCtx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign block height")
	}
	inv.height = h
	inv.span.SetAttributes(attribute.Int64("registry.height", int64(h)))
	return nil
}

func (s *Service) end(inv *invocation, err error) {
	if err != nil {
		inv.span.RecordError(err)
		inv.span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	inv.span.End()
	if s.metrics != nil {
		s.metrics.ObserveOperation(inv.operation, inv.start)
	}
}

// deny records a rejected mutation and returns err unchanged.
func (s *Service) deny(ctx context.Context, inv *invocation, subject string, err error) error {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeTimeout {
		s.logger.ErrorContext(ctx, "registry operation failed",
			"operation", inv.operation,
			"principal", inv.caller.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return err
	}
	s.logger.WarnContext(ctx, "registry operation denied",
		"operation", inv.operation,
		"principal", inv.caller.String(),
		"code", string(code),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementDenied(inv.operation, code)
	}
	s.emit(ctx, inv, audit.EventOperationDenied, subject, "denied", string(code))
	return err
}

// logAudit writes the audit log line and publishes the event.
func (s *Service) logAudit(ctx context.Context, inv *invocation, event audit.AuditEvent, subject string, attributes ...any) {
	args := append(attributes,
		"event", string(event),
		"log_type", "audit",
		"principal", inv.caller.String(),
		"subject", subject,
		"height", inv.height,
	)
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.InfoContext(ctx, string(event), args...)
	s.emit(ctx, inv, event, subject, "granted", "")
}

func (s *Service) emit(ctx context.Context, inv *invocation, event audit.AuditEvent, subject, decision, reason string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Category:  event.Category(),
		Timestamp: requestcontext.Now(ctx),
		Height:    inv.height,
		Principal: inv.caller.String(),
		Subject:   subject,
		Action:    string(event),
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish audit event",
			"event", string(event),
			"error", err,
		)
	}
}

func propertySubject(id models.PropertyID) string {
	return "property:" + id.String()
}

func adminSubject(p models.Principal) string {
	return "administrator:" + p.String()
}
