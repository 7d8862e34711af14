package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"landregistry/internal/registry/models"
	"landregistry/pkg/platform/sentinel"
)

type AdminStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *AdminStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestAdminStoreSuite(t *testing.T) {
	suite.Run(t, new(AdminStoreSuite))
}

func (s *AdminStoreSuite) TestUpsertOverwrites() {
	s.Require().NoError(s.store.Upsert(s.ctx, &models.Administrator{Principal: "z", Role: models.RoleNotary, Active: true}))
	s.Require().NoError(s.store.Upsert(s.ctx, &models.Administrator{Principal: "z", Role: models.RoleRegistrar, Active: false}))

	found, err := s.store.Find(s.ctx, "z")
	s.Require().NoError(err)
	s.Equal(models.RoleRegistrar, found.Role)
	s.False(found.Active)
}

func (s *AdminStoreSuite) TestFindUnknown() {
	_, err := s.store.Find(s.ctx, "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *AdminStoreSuite) TestListOrdered() {
	for _, p := range []models.Principal{"carol", "alice", "bob"} {
		s.Require().NoError(s.store.Upsert(s.ctx, &models.Administrator{Principal: p, Role: models.RoleRegistrar, Active: true}))
	}
	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(models.Principal("alice"), list[0].Principal)
	s.Equal(models.Principal("carol"), list[2].Principal)
}
