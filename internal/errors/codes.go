package errors

// Code classifies a failure for the dispatcher and the persistence layer.
type Code string

const (
	// CodeValidation covers malformed arguments and missing targets.
	CodeValidation Code = "VALIDATION"
	// CodeNotFound covers unknown items, characters and targets.
	CodeNotFound Code = "NOT_FOUND"
	// CodeConflict covers stale target references, dead entities and
	// grid cell mismatches. Players see it the same way as CodeValidation.
	CodeConflict Code = "CONFLICT"
	// CodePersistence marks storage write/read failures. These are logged
	// and retried, never shown as gameplay failures.
	CodePersistence Code = "PERSISTENCE"
	// CodeInternal marks recovered panics and unexpected failures.
	CodeInternal Code = "INTERNAL"
)

func (c Code) String() string {
	return string(c)
}

// PlayerVisible reports whether an error with this code should be shown
// verbatim to the player that caused it.
func (c Code) PlayerVisible() bool {
	switch c {
	case CodeValidation, CodeNotFound, CodeConflict:
		return true
	}
	return false
}
