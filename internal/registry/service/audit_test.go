package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"landregistry/internal/ledger"
	"landregistry/internal/registry/models"
	"landregistry/internal/registry/service/mocks"
	adminstore "landregistry/internal/registry/store/admin"
	historystore "landregistry/internal/registry/store/history"
	propertystore "landregistry/internal/registry/store/property"
	dErrors "landregistry/pkg/domain-errors"
	audit "landregistry/pkg/platform/audit"
	"landregistry/pkg/testutil"
)

func newMockedService(t *testing.T, publisher AuditPublisher, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(publisher),
	}, opts...)
	return New(propertystore.NewInMemory(), adminstore.NewInMemory(), historystore.NewInMemory(), deployer, opts...)
}

func actionIs(action audit.AuditEvent) gomock.Matcher {
	return gomock.Cond(func(e audit.Event) bool { return e.Action == string(action) })
}

func TestService_EmitsAuditEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockAuditPublisher(ctrl)
	svc := newMockedService(t, publisher, WithSequencer(ledger.NewMemorySequencer(9)))

	ctx := testutil.AsRequest(context.Background(), "req-1")

	gomock.InOrder(
		publisher.EXPECT().Emit(gomock.Any(), actionIs(audit.EventRegistryBootstrapped)).Return(nil),
		publisher.EXPECT().Emit(gomock.Any(), gomock.Cond(func(e audit.Event) bool {
			return e.Action == string(audit.EventPropertyRegistered) &&
				e.Subject == "property:1" &&
				e.Height == 11 &&
				e.Principal == string(deployer) &&
				e.RequestID == "req-1" &&
				e.Category == audit.CategoryCompliance
		})).Return(nil),
		publisher.EXPECT().Emit(gomock.Any(), gomock.Cond(func(e audit.Event) bool {
			return e.Action == string(audit.EventOperationDenied) &&
				e.Decision == "denied" &&
				e.Reason == string(dErrors.CodeNotOwner)
		})).Return(nil),
	)

	require.NoError(t, svc.Bootstrap(ctx, deployer))

	id, err := svc.Register(ctx, deployer, validCommand())
	require.NoError(t, err)
	assert.Equal(t, models.PropertyID(1), id)

	err = svc.Transfer(ctx, "intruder", id, "intruder-2")
	assert.Equal(t, dErrors.CodeNotOwner, dErrors.CodeOf(err))
}

func TestService_PublisherFailureDoesNotFailOperation(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockAuditPublisher(ctrl)
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).AnyTimes()

	svc := newMockedService(t, publisher, WithSequencer(ledger.NewMemorySequencer(0)))

	assert.NoError(t, svc.Bootstrap(context.Background(), deployer))
}

func TestService_HeightFromSequencer(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockAuditPublisher(ctrl)
	seq := mocks.NewMockSequencer(ctrl)

	t.Run("stamps events with the sequencer height", func(t *testing.T) {
		seq.EXPECT().Next(gomock.Any()).Return(uint64(7), nil)
		publisher.EXPECT().Emit(gomock.Any(), gomock.Cond(func(e audit.Event) bool { return e.Height == 7 })).Return(nil)

		svc := newMockedService(t, publisher, WithSequencer(seq))
		require.NoError(t, svc.Bootstrap(context.Background(), deployer))
	})

	t.Run("sequencer failure is internal and applies nothing", func(t *testing.T) {
		seq.EXPECT().Next(gomock.Any()).Return(uint64(0), errors.New("redis down"))

		svc := newMockedService(t, publisher, WithSequencer(seq))
		err := svc.Bootstrap(context.Background(), deployer)
		assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(err))

		_, found, err := svc.GetAdministrator(context.Background(), deployer)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("no sequencer is internal", func(t *testing.T) {
		svc := newMockedService(t, publisher)
		err := svc.Bootstrap(context.Background(), deployer)
		assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(err))
	})
}
