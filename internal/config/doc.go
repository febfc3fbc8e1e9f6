// Package config provides configuration management for the defcheck CLI.
//
// # Configuration File
//
// defcheck looks for defcheck.yaml in the current directory, then in
// ~/.config/defcheck (or $DEFCHECK_CONFIG_DIR). Every key can also be set
// through a DEFCHECK_ environment variable, and command-line flags override
// both:
//
//	version: 1
//	evaluate_expressions: false
//	container_class: Container
//	definitions:
//	  - config/services/**/*.yaml
//	types:
//	  - config/types.yaml
//	format: text          # text, json or table
//	suggestions: true
//
// # Loading Configuration
//
// Call [Init] once, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//
// An explicit path that does not exist fails with errors.ErrNotFound; an
// implicit search that finds nothing falls back to [Default].
//
// # Validation
//
// [Load] validates the result. [Validate] reports every problem at once:
//
//	for _, err := range config.Validate(cfg) {
//	    fmt.Println(err)
//	}
package config
