/*
Package domain contains the core types of the Tendril controller.

It defines the component capability model, the rule definition format and the
values that flow between components and rules. This package is kept pure and
free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Component: a named, typed, mutable state cell with a fixed capability table.
  - Value: the tagged int/float/string variant held by components and rule literals.
  - Predicate / Action: enumerated capability ids, parsed from rule method names.
  - Definition: the persisted COMPONENTS/EVENTS document, also used for client updates.
  - Feed: the live kind -> {label: value} display snapshot.
*/
package domain
