package hangman

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
)

// LetterMatch - result of evaluating a letter against the target word.
type LetterMatch struct {
	Letter    rune
	Matches   bool
	Positions []int
}

// NormalizeLetter - validates that letter is exactly one alphabetic character and returns it lowercased.
func NormalizeLetter(letter string) (rune, error) {
	runes := []rune(letter)
	if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
		return 0, fmt.Errorf("%w: letter %q must be a single alphabetic character", apperror.ErrInvalidInput, letter)
	}

	return unicode.ToLower(runes[0]), nil
}

// NormalizeWord - validates that word is non-empty and made of letters only and returns it lowercased.
func NormalizeWord(word string) (string, error) {
	if word == "" {
		return "", fmt.Errorf("%w: word is empty", apperror.ErrInvalidInput)
	}

	for _, r := range word {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("%w: word %q contains non-letter characters", apperror.ErrInvalidInput, word)
		}
	}

	return strings.ToLower(word), nil
}

// EvaluateLetter - reports whether letter occurs in word and at which rune positions.
func EvaluateLetter(word, letter string) (LetterMatch, error) {
	normalized, err := NormalizeLetter(letter)
	if err != nil {
		return LetterMatch{}, err
	}

	match := LetterMatch{Letter: normalized}
	for i, r := range []rune(strings.ToLower(word)) {
		if r == normalized {
			match.Positions = append(match.Positions, i)
		}
	}
	match.Matches = len(match.Positions) > 0

	return match, nil
}

func EvaluateWord(word, guess string) bool {
	return strings.ToLower(word) == strings.ToLower(guess)
}

// IsFullyRevealed - true iff every rune position of word is in revealed.
func IsFullyRevealed(word string, revealed map[int]struct{}) bool {
	for i := range []rune(word) {
		if _, ok := revealed[i]; !ok {
			return false
		}
	}

	return true
}

// IsNearMiss - a wrong guess within maxDistance edits of the word.
func IsNearMiss(word, guess string, maxDistance int) bool {
	if maxDistance <= 0 || EvaluateWord(word, guess) {
		return false
	}

	return levenshtein.ComputeDistance(strings.ToLower(word), strings.ToLower(guess)) <= maxDistance
}
