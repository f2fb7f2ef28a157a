package report

import (
	"context"

	"github.com/nrjais/docqa/internal/rules"
	"github.com/nrjais/docqa/internal/validator"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// CollectionValidator validates one collection against its rule.
type CollectionValidator interface {
	Validate(ctx context.Context, collection string, rule rules.CollectionRule) (validator.CollectionResult, error)
}
