package pkg

import "github.com/google/uuid"

// GenerateID - generates a new unique identifier for rooms, rounds and players.
func GenerateID() string {
	return uuid.NewString()
}

// IsValidID - reports whether id looks like an identifier produced by GenerateID.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
