package apperror

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotInRoom          = errors.New("player is not in room")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrAlreadyDepleted    = errors.New("health is already depleted")
	ErrPersistenceWarning = errors.New("state committed but not persisted")
	ErrNotFound           = errors.New("not found")
	ErrRoomClosed         = errors.New("room is closed")
)

var kinds = []struct {
	err  error
	name string
}{
	// checked first: a warning may wrap the cause of a storage failure
	{ErrPersistenceWarning, "persistence_warning"},
	{ErrInvalidInput, "invalid_input"},
	{ErrNotInRoom, "not_in_room"},
	{ErrForbidden, "forbidden"},
	{ErrConflict, "conflict"},
	{ErrAlreadyDepleted, "already_depleted"},
	{ErrNotFound, "not_found"},
	{ErrRoomClosed, "room_closed"},
}

// Kind - returns the name of the error kind err belongs to, or "internal" if none matches.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}

	return "internal"
}

// IsWarning - reports whether err only signals a non-fatal persistence problem.
func IsWarning(err error) bool {
	return errors.Is(err, ErrPersistenceWarning)
}
