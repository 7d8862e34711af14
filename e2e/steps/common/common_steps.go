package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	GetStatus() int
	GetResponseField(field string) (interface{}, error)
	ActAs(alias string)
}

// RegisterSteps registers identity, request and assertion steps shared by features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the registry is running$`, steps.registryIsRunning)
	ctx.Step(`^I am "([^"]*)"$`, steps.iAm)
	ctx.Step(`^I am anonymous$`, steps.iAmAnonymous)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the error code should be "([^"]*)"$`, steps.errorCodeShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.responseFieldShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) registryIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/healthz"); err != nil {
		return fmt.Errorf("registry unreachable: %w", err)
	}
	return s.responseStatusShouldBe(ctx, 200)
}

func (s *commonSteps) iAm(ctx context.Context, alias string) error {
	s.tc.ActAs(alias)
	return nil
}

func (s *commonSteps) iAmAnonymous(ctx context.Context) error {
	s.tc.ActAs("")
	return nil
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expected int) error {
	if got := s.tc.GetStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d", expected, got)
	}
	return nil
}

func (s *commonSteps) errorCodeShouldBe(ctx context.Context, code string) error {
	return s.responseFieldShouldBe(ctx, "error", code)
}

func (s *commonSteps) responseFieldShouldBe(ctx context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, got)
	}
	return nil
}
