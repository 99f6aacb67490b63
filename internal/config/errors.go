package config

import "errors"

// ErrConfigVersionTooNew is returned when a config file declares a schema
// version newer than this binary understands.
var ErrConfigVersionTooNew = errors.New("config: version is newer than supported")

// ErrNoAreas is returned when a config declares zero areas; a daemon with
// no areas has nothing to do and is almost certainly a mistake.
var ErrNoAreas = errors.New("config: no areas configured")

// ErrInvalidWeight is returned when a link-metric weight falls outside
// 0-100 (spec.md §6, "linkmetric-weight-... <0-100>").
var ErrInvalidWeight = errors.New("config: link-metric weight must be 0-100")

// ErrInvalidMDRConstraint is returned when mdr_constraint is not 2 or 3
// (spec.md §3 "MDRConstraint ∈ {2,3}").
var ErrInvalidMDRConstraint = errors.New("config: mdr_constraint must be 2 or 3")
