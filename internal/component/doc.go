// Package component implements the built-in component kinds and the factory
// that creates them from definitions.
//
// Each kind embeds base for the label, configuration and current value, and
// dispatches predicates and actions with a switch over the enumerated ids in
// pkg/domain. New kinds are added by registering a Constructor on a Factory;
// the rule engine never changes.
package component
