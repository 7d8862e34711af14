package service

import (
	"context"
	"sync"
	"time"

	"landregistry/internal/registry/models"
)

// heldTx parks the next invocation at the transaction boundary until
// released, letting a later invocation take the lock first.
type heldTx struct {
	inner StoreTx

	mu      sync.Mutex
	hold    bool
	entered chan struct{}
	release chan struct{}
}

func newHeldTx(inner StoreTx) *heldTx {
	return &heldTx{
		inner:   inner,
		hold:    true,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (t *heldTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	t.mu.Lock()
	hold := t.hold
	t.hold = false
	t.mu.Unlock()

	if hold {
		close(t.entered)
		<-t.release
	}
	return t.inner.RunInTx(ctx, fn)
}

func (s *ServiceSuite) TestHeightsFollowApplyOrder() {
	id := s.register(registrar)
	held := newHeldTx(NewMemoryTx())
	svc := s.newService(WithTx(held))

	type outcome struct {
		summary *models.AuditSummary
		err     error
	}
	audited := make(chan outcome, 1)
	go func() {
		summary, err := svc.Audit(s.ctx, registrar, id, 2_000_000, notary)
		audited <- outcome{summary, err}
	}()
	<-held.entered

	s.Require().NoError(svc.Transfer(s.ctx, registrar, id, bob))
	afterTransfer := s.snapshot(id).LastTransferAt

	close(held.release)
	got := <-audited
	s.Require().NoError(got.err)
	afterAudit := s.snapshot(id)

	s.Greater(afterAudit.LastTransferAt, afterTransfer, "logical time must not run backwards")
	s.Equal(got.summary.Timestamp, afterAudit.LastTransferAt)

	records, err := svc.History(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(afterAudit.LastTransferAt, records[0].Timestamp)
	s.Equal(bob, records[0].From)
}

func (s *ServiceSuite) TestReadsWaitForInFlightWrites() {
	id := s.register(registrar)

	reads := map[string]func(svc *Service) error{
		"stats": func(svc *Service) error {
			_, err := svc.Stats(s.ctx)
			return err
		},
		"history entry": func(svc *Service) error {
			_, _, err := svc.HistoryEntry(s.ctx, id, 1)
			return err
		},
		"administrator": func(svc *Service) error {
			_, _, err := svc.GetAdministrator(s.ctx, registrar)
			return err
		},
		"administrator list": func(svc *Service) error {
			_, err := svc.ListAdministrators(s.ctx)
			return err
		},
	}
	for name, read := range reads {
		s.Run(name, func() {
			tx := NewMemoryTx()
			svc := s.newService(WithTx(tx))

			inside := make(chan struct{})
			release := make(chan struct{})
			writeDone := make(chan error, 1)
			go func() {
				writeDone <- tx.RunInTx(s.ctx, func(context.Context) error {
					close(inside)
					<-release
					return nil
				})
			}()
			<-inside

			readDone := make(chan error, 1)
			go func() { readDone <- read(svc) }()

			select {
			case <-readDone:
				s.Fail("read completed while a write held the lock")
			case <-time.After(50 * time.Millisecond):
			}

			close(release)
			s.Require().NoError(<-writeDone)
			select {
			case err := <-readDone:
				s.NoError(err)
			case <-time.After(time.Second):
				s.Fail("read did not complete after the write released the lock")
			}
		})
	}
}
