// Package runtime binds rule definitions to live components and evaluates
// them.
//
// A Resolver turns definitions into a registry of components and a list of
// Events holding direct component handles. An Engine evaluates the Events in
// declaration order, one pass per tick. Effects performed by an Event are
// visible to every later Event of the same pass.
package runtime
