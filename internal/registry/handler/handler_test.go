package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"landregistry/internal/ledger"
	"landregistry/internal/registry/models"
	"landregistry/internal/registry/service"
	adminstore "landregistry/internal/registry/store/admin"
	historystore "landregistry/internal/registry/store/history"
	propertystore "landregistry/internal/registry/store/property"
	dErrors "landregistry/pkg/domain-errors"
	"landregistry/pkg/platform/middleware/admin"
	"landregistry/pkg/platform/middleware/auth"
	"landregistry/pkg/testutil"
)

const (
	deployer   = "deployer"
	notary     = "notary-1"
	buyer      = "buyer"
	adminToken = "ops-secret"
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	tokens *auth.HMACValidator
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(propertystore.NewInMemory(), adminstore.NewInMemory(), historystore.NewInMemory(), deployer,
		service.WithLogger(logger),
		service.WithSequencer(ledger.NewMemorySequencer(0)),
	)
	s.tokens = auth.NewHMACValidator("handler-test-key", "")

	r := chi.NewRouter()
	New(svc, s.tokens, adminToken, logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) token(principal string) string {
	tok, err := s.tokens.Issue(principal, time.Hour, time.Now())
	s.Require().NoError(err)
	return tok
}

func (s *HandlerSuite) post(principal, path string, body any) *http.Response {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, body)
	if principal != "" {
		testutil.WithBearer(req, s.token(principal))
	}
	return testutil.DoRequest(s.router, req).Result()
}

func (s *HandlerSuite) do(req *http.Request) int {
	return testutil.DoRequest(s.router, req).Code
}

func registerBody() RegisterPropertyRequest {
	return RegisterPropertyRequest{
		Lat:              40_000_000,
		Lng:              -74_000_000,
		AreaSqFt:         5000,
		Value:            1_500_000_000,
		LegalDescription: "Lot 7, Block 12",
		PropertyType:     "residential",
		ZoningCode:       "r-1",
		TaxID:            "TX-0001",
	}
}

// bootstrapWithProperty leaves property 1 owned by the deployer and a notary granted.
func (s *HandlerSuite) bootstrapWithProperty() {
	s.Require().Equal(http.StatusNoContent, s.post(deployer, "/registry/bootstrap", nil).StatusCode)
	s.Require().Equal(http.StatusNoContent, s.post(deployer, "/registry/administrators",
		map[string]any{"principal": notary, "role": "notary"}).StatusCode)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/properties", registerBody())
	testutil.WithBearer(req, s.token(deployer))
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusCreated, rr.Code)
	resp := testutil.UnmarshalResponse[RegisterPropertyResponse](s.T(), rr)
	s.Require().Equal(models.PropertyID(1), resp.ID)
}

func (s *HandlerSuite) TestAuthentication() {
	s.Run("writes require a bearer token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/properties", registerBody()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthenticated")
	})

	s.Run("reads are public", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/1"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertJSONContains(s.T(), rr, "found", false)
	})
}

func (s *HandlerSuite) TestRegisterAndRead() {
	s.bootstrapWithProperty()

	s.Run("property is readable", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/1"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[PropertyResponse](s.T(), rr)
		s.True(resp.Found)
		s.Equal(models.Principal(deployer), resp.Property.Owner)
		s.Equal(models.StatusActive, resp.Property.Status)
	})

	s.Run("metadata is normalized", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/1/metadata"))
		resp := testutil.UnmarshalResponse[MetadataResponse](s.T(), rr)
		s.True(resp.Found)
		s.Equal("R-1", resp.Metadata.ZoningCode)
	})

	s.Run("ownership query", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/1/ownership?owner="+deployer))
		testutil.AssertJSONContains(s.T(), rr, "verified", true)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/1/ownership?owner="+buyer))
		testutil.AssertJSONContains(s.T(), rr, "verified", false)
	})

	s.Run("ownership defaults to the bearer", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/properties/1/ownership")
		testutil.WithBearer(req, s.token(deployer))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertJSONContains(s.T(), rr, "verified", true)
	})

	s.Run("id zero reads as absent", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/0"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertJSONContains(s.T(), rr, "found", false)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/0/metadata"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertJSONContains(s.T(), rr, "found", false)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/0/ownership?owner="+deployer))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertJSONContains(s.T(), rr, "verified", false)
	})

	s.Run("malformed id is a bad request", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/abc"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("stats report counters", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/stats"))
		resp := testutil.UnmarshalResponse[StatsResponse](s.T(), rr)
		s.Equal(uint64(1), resp.TotalProperties)
		s.Equal(models.PropertyID(2), resp.NextPropertyID)
	})
}

func (s *HandlerSuite) TestRegisterFailures() {
	s.Require().Equal(http.StatusNoContent, s.post(deployer, "/registry/bootstrap", nil).StatusCode)

	tests := []struct {
		name   string
		caller string
		body   any
		status int
		code   dErrors.Code
	}{
		{"unknown field", deployer, map[string]any{"lat": 1, "bogus": true}, http.StatusBadRequest, "bad_request"},
		{"no registrar role", buyer, registerBody(), http.StatusForbidden, "unauthorized"},
		{"out of range latitude", deployer, func() RegisterPropertyRequest {
			b := registerBody()
			b.Lat = 90_000_001
			return b
		}(), http.StatusBadRequest, "invalid_coordinates"},
		{"zero area", deployer, func() RegisterPropertyRequest {
			b := registerBody()
			b.AreaSqFt = 0
			return b
		}(), http.StatusBadRequest, "invalid_area"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/properties", tt.body)
			testutil.WithBearer(req, s.token(tt.caller))
			rr := testutil.DoRequest(s.router, req)
			testutil.AssertStatusAndError(s.T(), rr, tt.status, tt.code)
		})
	}
}

func (s *HandlerSuite) TestTransferAuditAndStatus() {
	s.bootstrapWithProperty()

	s.Run("audit returns the summary", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/properties/1/audit", AuditRequest{Price: 2_000_000_000, Notary: notary})
		testutil.WithBearer(req, s.token(deployer))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		summary := testutil.UnmarshalResponse[models.AuditSummary](s.T(), rr)
		s.Equal(uint64(2_000_000_000), summary.Value)
		s.True(summary.OwnerVerified)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/1/history"))
		history := testutil.UnmarshalResponse[HistoryResponse](s.T(), rr)
		s.Require().Len(history.Records, 1)
		s.True(history.Records[0].Notarized)

		entry := testutil.NewRequest(s.T(), http.MethodGet, "/properties/1/history/"+strconv.FormatUint(summary.Timestamp, 10))
		s.Equal(http.StatusOK, s.do(entry))
		s.Equal(http.StatusNotFound, s.do(testutil.NewRequest(s.T(), http.MethodGet, "/properties/1/history/999999")))
	})

	s.Run("zero price is insufficient payment", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/properties/1/audit", AuditRequest{Price: 0, Notary: notary})
		testutil.WithBearer(req, s.token(deployer))
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusBadRequest, "insufficient_payment")
	})

	s.Run("transfer to self is an invalid recipient", func() {
		resp := s.post(deployer, "/properties/1/transfer", TransferRequest{Recipient: deployer})
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("owner transfers", func() {
		resp := s.post(deployer, "/properties/1/transfer", TransferRequest{Recipient: buyer})
		s.Equal(http.StatusNoContent, resp.StatusCode)
	})

	s.Run("previous owner is no longer owner", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/properties/1/transfer", TransferRequest{Recipient: notary})
		testutil.WithBearer(req, s.token(deployer))
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusForbidden, "not_owner")
	})

	s.Run("unknown property is not found", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/properties/9/transfer", TransferRequest{Recipient: notary})
		testutil.WithBearer(req, s.token(buyer))
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusNotFound, "property_not_found")
	})

	s.Run("frozen property cannot move", func() {
		s.Equal(http.StatusNoContent, s.post(deployer, "/properties/1/status", StatusRequest{Status: "frozen"}).StatusCode)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/properties/1/transfer", TransferRequest{Recipient: notary})
		testutil.WithBearer(req, s.token(buyer))
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusConflict, "transfer_restricted")
	})

	s.Run("unknown status is a bad request", func() {
		s.Equal(http.StatusBadRequest, s.post(deployer, "/properties/1/status", StatusRequest{Status: "sold"}).StatusCode)
	})
}

func (s *HandlerSuite) TestAdministration() {
	s.Require().Equal(http.StatusNoContent, s.post(deployer, "/registry/bootstrap", nil).StatusCode)

	s.Run("non-deployer cannot bootstrap", func() {
		s.Equal(http.StatusForbidden, s.post(buyer, "/registry/bootstrap", nil).StatusCode)
	})

	s.Run("unknown role is rejected", func() {
		resp := s.post(deployer, "/registry/administrators", map[string]any{"principal": notary, "role": "mayor"})
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("grant is readable", func() {
		s.Require().Equal(http.StatusNoContent, s.post(deployer, "/registry/administrators",
			map[string]any{"principal": notary, "role": "notary", "active": false}).StatusCode)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/registry/administrators/"+notary))
		resp := testutil.UnmarshalResponse[AdministratorResponse](s.T(), rr)
		s.True(resp.Found)
		s.Equal(models.RoleNotary, resp.Administrator.Role)
		s.False(resp.Administrator.Active)
	})

	s.Run("listing requires the admin token", func() {
		s.Equal(http.StatusUnauthorized, s.do(testutil.NewRequest(s.T(), http.MethodGet, "/registry/administrators")))

		req := testutil.NewRequest(s.T(), http.MethodGet, "/registry/administrators")
		req.Header.Set(admin.HeaderAdminToken, adminToken)
		rr := testutil.DoRequest(s.router, req)
		resp := testutil.UnmarshalResponse[AdministratorsResponse](s.T(), rr)
		s.Len(resp.Administrators, 2)
	})

	s.Run("pause blocks registration", func() {
		s.Equal(http.StatusForbidden, s.post(buyer, "/registry/pause", PauseRequest{Paused: true}).StatusCode)
		s.Require().Equal(http.StatusNoContent, s.post(deployer, "/registry/pause", PauseRequest{Paused: true}).StatusCode)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/properties", registerBody())
		testutil.WithBearer(req, s.token(deployer))
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusForbidden, "unauthorized")
	})
}

func TestRequests_Validate(t *testing.T) {
	t.Run("add administrator defaults to active", func(t *testing.T) {
		req := &AddAdministratorRequest{Principal: "  notary-1 ", Role: "NOTARY"}
		req.Normalize()
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !*req.Active || req.principal != "notary-1" || req.role != models.RoleNotary {
			t.Fatalf("unexpected request state: %+v", req)
		}
	})

	t.Run("oversized legal description", func(t *testing.T) {
		req := &RegisterPropertyRequest{LegalDescription: string(make([]byte, 513))}
		req.Normalize()
		if err := req.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})
}
