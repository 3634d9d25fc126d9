package models

import (
	"fmt"
	"strings"
	"unicode"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RecordIDString safely extracts the string ID from a SurrealDB RecordID.
// Returns an error if the ID is not a string type.
func RecordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}

// TitleWords upper-cases the first letter of every whitespace-separated word
// and lower-cases the rest, e.g. "memory CARE" -> "Memory Care".
func TitleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// HumanizeLabel turns a snake_case label into title-cased words,
// e.g. "assisted_living" -> "Assisted Living".
func HumanizeLabel(s string) string {
	return TitleWords(strings.ReplaceAll(s, "_", " "))
}
