package report

// KeyKind distinguishes a plain category from a free-text sub-category.
type KeyKind int

// Key kinds.
const (
	KindKnown KeyKind = iota
	KindOther
)

// GroupKey identifies one bucket of a breakdown. Keys compare by value, so a
// detail that itself contains ": " can never collide with another key.
type GroupKey struct {
	Kind     KeyKind
	Category string
	Detail   string
}

// Known returns the key of a plain category.
func Known(category string) GroupKey {
	return GroupKey{Kind: KindKnown, Category: category}
}

// Other returns the key of a category refined by free text.
func Other(category, detail string) GroupKey {
	return GroupKey{Kind: KindOther, Category: category, Detail: detail}
}

// String formats the key for display: "category" or "category: detail".
func (k GroupKey) String() string {
	if k.Kind == KindOther {
		return k.Category + ": " + k.Detail
	}
	return k.Category
}

// compose returns an Other key when the category expects detail and the
// detail is not blank, and the plain category key otherwise.
func compose(category, detail string, expand bool) GroupKey {
	if expand && detail != "" {
		return Other(category, detail)
	}
	return Known(category)
}
