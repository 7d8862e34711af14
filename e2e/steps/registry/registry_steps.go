package registry

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string) error
	GetStatus() int
	GetResponseField(field string) (interface{}, error)
	Actor(alias string) string
	ActAs(alias string)
	SaveProperty(alias string, id uint64)
	PropertyID(alias string) (uint64, error)
}

// RegisterSteps registers registry-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrySteps{tc: tc}

	// Administration steps
	ctx.Step(`^the deployer has bootstrapped the registry$`, steps.deployerBootstrapped)
	ctx.Step(`^"([^"]*)" is an active (REGISTRAR|NOTARY)$`, steps.isActiveAdministrator)
	ctx.Step(`^I grant "([^"]*)" the role "([^"]*)"$`, steps.grantRole)
	ctx.Step(`^I (pause|resume) the registry$`, steps.setPaused)

	// Property steps
	ctx.Step(`^I register property "([^"]*)" at (-?\d+), (-?\d+) with area (\d+) and value (\d+)$`, steps.registerProperty)
	ctx.Step(`^I transfer property "([^"]*)" to "([^"]*)"$`, steps.transferProperty)
	ctx.Step(`^I audit property "([^"]*)" for (\d+) notarized by "([^"]*)"$`, steps.auditProperty)
	ctx.Step(`^I set the status of property "([^"]*)" to "([^"]*)"$`, steps.setStatus)
	ctx.Step(`^I look up property "([^"]*)"$`, steps.lookUpProperty)

	// Assertion steps
	ctx.Step(`^property "([^"]*)" should be owned by "([^"]*)"$`, steps.shouldBeOwnedBy)
	ctx.Step(`^property "([^"]*)" should have (\d+) history records?$`, steps.shouldHaveHistory)
}

type registrySteps struct {
	tc TestContext
}

func (s *registrySteps) deployerBootstrapped(ctx context.Context) error {
	s.tc.ActAs("deployer")
	if err := s.tc.POST("/registry/bootstrap", map[string]interface{}{}); err != nil {
		return err
	}
	return s.expect(204)
}

func (s *registrySteps) isActiveAdministrator(ctx context.Context, alias, role string) error {
	s.tc.ActAs("deployer")
	if err := s.grantRole(ctx, alias, role); err != nil {
		return err
	}
	return s.expect(204)
}

func (s *registrySteps) grantRole(ctx context.Context, alias, role string) error {
	return s.tc.POST("/registry/administrators", map[string]interface{}{
		"principal": s.tc.Actor(alias),
		"role":      role,
	})
}

func (s *registrySteps) setPaused(ctx context.Context, action string) error {
	return s.tc.POST("/registry/pause", map[string]interface{}{"paused": action == "pause"})
}

func (s *registrySteps) registerProperty(ctx context.Context, alias string, lat, lng int64, area, value uint64) error {
	err := s.tc.POST("/properties", map[string]interface{}{
		"lat":               lat,
		"lng":               lng,
		"area_sq_ft":        area,
		"value":             value,
		"legal_description": "Lot " + alias,
		"property_type":     "residential",
		"zoning_code":       "R1",
		"tax_id":            "E2E-" + alias,
	})
	if err != nil || s.tc.GetStatus() != 201 {
		return err
	}
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	f, ok := id.(float64)
	if !ok {
		return fmt.Errorf("id is not numeric: %v", id)
	}
	s.tc.SaveProperty(alias, uint64(f))
	return nil
}

func (s *registrySteps) transferProperty(ctx context.Context, alias, recipient string) error {
	id, err := s.tc.PropertyID(alias)
	if err != nil {
		return err
	}
	return s.tc.POST(fmt.Sprintf("/properties/%d/transfer", id), map[string]interface{}{
		"recipient": s.tc.Actor(recipient),
	})
}

func (s *registrySteps) auditProperty(ctx context.Context, alias string, price uint64, notary string) error {
	id, err := s.tc.PropertyID(alias)
	if err != nil {
		return err
	}
	return s.tc.POST(fmt.Sprintf("/properties/%d/audit", id), map[string]interface{}{
		"price":  price,
		"notary": s.tc.Actor(notary),
	})
}

func (s *registrySteps) setStatus(ctx context.Context, alias, status string) error {
	id, err := s.tc.PropertyID(alias)
	if err != nil {
		return err
	}
	return s.tc.POST(fmt.Sprintf("/properties/%d/status", id), map[string]interface{}{"status": status})
}

func (s *registrySteps) lookUpProperty(ctx context.Context, alias string) error {
	id, err := s.tc.PropertyID(alias)
	if err != nil {
		return err
	}
	return s.tc.GET(fmt.Sprintf("/properties/%d", id))
}

func (s *registrySteps) shouldBeOwnedBy(ctx context.Context, alias, owner string) error {
	id, err := s.tc.PropertyID(alias)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/properties/%d/ownership?owner=%s", id, url.QueryEscape(s.tc.Actor(owner)))
	if err := s.tc.GET(path); err != nil {
		return err
	}
	verified, err := s.tc.GetResponseField("verified")
	if err != nil {
		return err
	}
	if verified != true {
		return fmt.Errorf("property %s is not owned by %s", alias, owner)
	}
	return nil
}

func (s *registrySteps) shouldHaveHistory(ctx context.Context, alias string, n int) error {
	id, err := s.tc.PropertyID(alias)
	if err != nil {
		return err
	}
	if err := s.tc.GET(fmt.Sprintf("/properties/%d/history", id)); err != nil {
		return err
	}
	records, err := s.tc.GetResponseField("records")
	if err != nil {
		return err
	}
	list, ok := records.([]interface{})
	if !ok {
		return fmt.Errorf("records is not a list: %v", records)
	}
	if len(list) != n {
		return fmt.Errorf("expected %d history records, got %d", n, len(list))
	}
	return nil
}

func (s *registrySteps) expect(status int) error {
	if got := s.tc.GetStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d", status, got)
	}
	return nil
}
