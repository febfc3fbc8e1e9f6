package check

import (
	"iter"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/validator"
)

// BatchValidator validates many definitions and isolates failures per id.
type BatchValidator struct {
	graph   definition.Graph
	service DefinitionChecker
	opts    *options
}

// NewBatchValidator creates a BatchValidator around a per-definition check.
func NewBatchValidator(graph definition.Graph, service DefinitionChecker, opts ...Option) *BatchValidator {
	return &BatchValidator{
		graph:   graph,
		service: service,
		opts:    newOptions(opts),
	}
}

// Validate checks every definition yielded by definitions, in order.
//
// A recognized failure ([*DefinitionError]) is recorded against its id and
// validation continues with the next definition. Any other error aborts
// the batch and is returned with the errors collected so far discarded.
func (b *BatchValidator) Validate(definitions iter.Seq2[string, *definition.Definition]) (*validator.ErrorList, error) {
	list := validator.NewErrorList()
	for id, def := range definitions {
		if err := b.validateOne(list, id, def); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ValidateDefinitions checks the definitions registered under ids, looking
// each one up in the graph. Unknown ids are faults.
func (b *BatchValidator) ValidateDefinitions(ids []string) (*validator.ErrorList, error) {
	list := validator.NewErrorList()
	for _, id := range ids {
		def, ok := b.graph.Lookup(id)
		if !ok {
			return nil, errors.Wrapf(errors.ErrNotFound, "service %q", id)
		}
		if err := b.validateOne(list, id, def); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (b *BatchValidator) validateOne(list *validator.ErrorList, id string, def *definition.Definition) error {
	b.opts.logger.Debug("validating definition", "service_id", id, "class", def.Class)

	err := b.service.Validate(def)
	if err == nil {
		return nil
	}
	if !IsDefinitionError(err) {
		return errors.Wrapf(err, "validating service %q", id)
	}

	b.opts.logger.Debug("definition invalid", "service_id", id, "error", err)
	list.Add(validator.NewValidationError(id, def, err))
	return nil
}
