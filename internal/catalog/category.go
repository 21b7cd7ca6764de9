package catalog

// FallbackCategory receives stories whose category is deleted. It is also
// the label shown for orphaned category references.
const FallbackCategory = "عام"

// DefaultCategories is the seed set written once into an empty category
// collection, in display order.
var DefaultCategories = []string{
	"ريادة أعمال",
	"تجارة إلكترونية",
	"تطوير ذات",
	"تقنية",
	"روايات",
	"قصص أطفال",
	"شعر وأدب",
	FallbackCategory,
}

// CategoryLabel returns name when it is one of known, otherwise the
// fallback label. Stories may reference a category that no longer exists.
func CategoryLabel(name string, known []string) string {
	for _, k := range known {
		if k == name {
			return name
		}
	}
	return FallbackCategory
}

// Retag rewrites every story tagged from to to and returns how many changed.
func Retag(stories []Story, from, to string) int {
	n := 0
	for i := range stories {
		if stories[i].Category == from {
			stories[i].Category = to
			n++
		}
	}
	return n
}
