package domain

import "errors"

// ErrUnknownStage is returned when an edge or a lookup names a stage that does not exist.
var ErrUnknownStage = errors.New("unknown stage")

// ErrDuplicateStage is returned when two stages share the same id.
var ErrDuplicateStage = errors.New("duplicate stage id")

// ErrInvalidEpsilon is returned when epsilon is outside the open interval (0,1).
var ErrInvalidEpsilon = errors.New("epsilon must be in (0,1)")

// ErrUnknownLocale is returned when a language tag has no catalog.
var ErrUnknownLocale = errors.New("unknown locale")

// ErrInvalidStage is returned when a stage definition is malformed (empty id, bad role, negative threshold).
var ErrInvalidStage = errors.New("invalid stage")

// ErrDuplicateEdge is returned when the same from/to pair is declared twice.
var ErrDuplicateEdge = errors.New("duplicate edge")

// ErrPreferenceNotFound is returned when no locale preference is stored for a client.
var ErrPreferenceNotFound = errors.New("preference not found")
