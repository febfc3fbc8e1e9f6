// Package validator collects and reports service definition validation
// errors.
//
// # Core Concepts
//
//   - [ValidationError]: the failure of one definition, keyed by service id.
//   - [ErrorList]: an append-only ordered collection of failures.
//   - [Reporter]: renders a list as text, JSON or a table.
//
// # Basic Usage
//
//	list, err := batch.Validate(container.Definitions())
//	if err != nil {
//		return err // a fault, not a validation failure
//	}
//
//	if err := list.Err(); err != nil {
//		// err.Error() is the printed report
//	}
//
// The printed form is a header line followed by one line per failure:
//
//	Service definition validation errors (1):
//	- widget: Definition has no class
package validator
