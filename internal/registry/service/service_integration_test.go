//go:build integration

package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"landregistry/internal/ledger"
	"landregistry/internal/registry/models"
	adminstore "landregistry/internal/registry/store/admin"
	historystore "landregistry/internal/registry/store/history"
	propertystore "landregistry/internal/registry/store/property"
	dErrors "landregistry/pkg/domain-errors"
	"landregistry/pkg/testutil/containers"
)

type PostgresServiceSuite struct {
	suite.Suite
	pg      *containers.PostgresContainer
	ctx     context.Context
	service *Service
}

func TestPostgresServiceSuite(t *testing.T) {
	suite.Run(t, new(PostgresServiceSuite))
}

func (s *PostgresServiceSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.ctx = context.Background()
}

func (s *PostgresServiceSuite) SetupTest() {
	s.Require().NoError(s.pg.Reset(s.ctx))
	db := s.pg.DB
	s.service = New(propertystore.NewPostgres(db), adminstore.NewPostgres(db), historystore.NewPostgres(db), deployer,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTx(NewPostgresTx(db, 5*time.Second)),
		WithSequencer(ledger.NewPostgresSequencer(db)),
	)
	s.Require().NoError(s.service.Bootstrap(s.ctx, deployer))
	s.Require().NoError(s.service.AddAdministrator(s.ctx, deployer, notary, models.RoleNotary, true))
}

func (s *PostgresServiceSuite) TestLifecycle() {
	id, err := s.service.Register(s.ctx, deployer, validCommand())
	s.Require().NoError(err)
	s.Equal(models.PropertyID(1), id)

	summary, err := s.service.Audit(s.ctx, deployer, id, 2_000_000_000, notary)
	s.Require().NoError(err)

	rec, found, err := s.service.HistoryEntry(s.ctx, id, summary.Timestamp)
	s.Require().NoError(err)
	s.Require().True(found)
	s.True(rec.IsAudit())

	s.Require().NoError(s.service.Transfer(s.ctx, deployer, id, alice))
	err = s.service.Transfer(s.ctx, deployer, id, bob)
	s.Equal(dErrors.CodeNotOwner, dErrors.CodeOf(err))

	p, _, err := s.service.GetPropertyInfo(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(alice, p.Owner)
	s.Equal(uint64(2_000_000_000), p.Value)
}

func (s *PostgresServiceSuite) TestFailedAuditLeavesNoTrace() {
	id, err := s.service.Register(s.ctx, deployer, validCommand())
	s.Require().NoError(err)

	_, err = s.service.Audit(s.ctx, deployer, id, 0, notary)
	s.Equal(dErrors.CodeInsufficientPayment, dErrors.CodeOf(err))

	history, err := s.service.History(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *PostgresServiceSuite) TestConcurrentRegistrationsGetDistinctIDs() {
	const n = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[models.PropertyID]bool)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.service.Register(s.ctx, deployer, validCommand())
			s.NoError(err)
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Len(ids, n)
	stats, err := s.service.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(n), stats.TotalProperties)
	s.Equal(models.PropertyID(n+1), stats.NextPropertyID)
}
