// Package parser loads service definition files into a
// [definition.Container].
//
// YAML and TOML files share one schema with two top-level sections,
// parameters and services:
//
//	parameters:
//	  logger.class: FileLogger
//	services:
//	  logger:
//	    class: "%logger.class%"
//	  app.logger: "@logger"
//	  widget:
//	    class: Widget
//	    arguments: ["@logger", "@?cache", "@=service(\"logger\")", [1, 2], null]
//	    calls:
//	      - [setLogger, ["@logger"]]
//	    factory: ["@widget_factory", build]
//
// In argument values "@id" is a reference, "@?id" an optional reference,
// "@=expr" an expression and "@@text" the literal string "@text". A mapping
// tagged !service (or the single-key mapping {"!service": {...}} in TOML) is
// an inline definition.
package parser
