package profile

// skillSynonyms folds common variants of a skill tag onto one canonical tag,
// so "dish washing" on a post and "dishwasher" on a seeker still overlap.
var skillSynonyms = map[string][]string{
	"barista":     {"coffee making", "espresso", "coffee"},
	"cashier":     {"cashiering", "pos", "checkout"},
	"dishwashing": {"dish washing", "dishwasher", "dishes"},
	"server":      {"waiter", "waitress", "waiting tables"},
	"cleaning":    {"housekeeping", "cleaner"},
	"delivery":    {"rider", "courier"},
}

var canonicalSkill = func() map[string]string {
	out := make(map[string]string)
	for canon, variants := range skillSynonyms {
		for _, v := range variants {
			out[v] = canon
		}
	}
	return out
}()

// CanonicalSkill maps a normalized tag to its canonical form, or returns it
// unchanged.
func CanonicalSkill(tag string) string {
	if c, ok := canonicalSkill[tag]; ok {
		return c
	}
	return tag
}
