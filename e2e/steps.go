package e2e

import (
	"github.com/cucumber/godog"

	"landregistry/e2e/steps/common"
	"landregistry/e2e/steps/registry"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (identity, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register registry-specific steps
	registry.RegisterSteps(ctx, tc)
}
