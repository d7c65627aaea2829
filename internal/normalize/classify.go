// Package normalize turns combed records into their final clean shape.
package normalize

import "strings"

// Unclassified is the class assigned when no known category matches.
const Unclassified = "unclassified"

// Categories lists the known servant classes in match order.
var Categories = []string{
	"saber", "archer", "lancer",
	"rider", "assassin", "caster",
	"berserker", "shielder",
	"alterego", "ruler", "avenger",
	"foreigner", "mooncancer", "beast",
}

// Classify lower-cases class and returns the first category it starts with,
// or Unclassified.
func Classify(class string) string {
	lc := strings.ToLower(class)
	for _, c := range Categories {
		if strings.HasPrefix(lc, c) {
			return c
		}
	}
	return Unclassified
}
