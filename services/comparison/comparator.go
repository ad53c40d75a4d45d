package comparison

// Kind selects the classification and formatting rules of a field
type Kind string

const (
	KindDuration Kind = "duration"
	KindCost     Kind = "cost"
	KindCredits  Kind = "credits"
	KindSyllabus Kind = "syllabus"
	KindDefault  Kind = "default"
)

// Classification tags a value relative to the other side, for display only
type Classification string

const (
	ClassUnavailable Classification = "UNAVAILABLE"
	ClassBetter      Classification = "BETTER"
	ClassWorse       Classification = "WORSE"
	ClassEqual       Classification = "EQUAL"
	ClassNeutral     Classification = "NEUTRAL"
	ClassCredits     Classification = "CREDITS"
	ClassDefault     Classification = "DEFAULT"
)

var cssClasses = map[Classification]string{
	ClassUnavailable: "bg-gray-100 text-gray-600",
	ClassBetter:      "bg-green-100 text-green-800",
	ClassWorse:       "bg-red-100 text-red-800",
	ClassEqual:       "bg-yellow-100 text-yellow-800",
	ClassNeutral:     "bg-blue-100 text-blue-800",
	ClassCredits:     "bg-purple-100 text-purple-800",
	ClassDefault:     "bg-gray-100 text-gray-800",
}

// CSSClass returns the utility classes the front end renders for c
func (c Classification) CSSClass() string {
	if css, ok := cssClasses[c]; ok {
		return css
	}
	return cssClasses[ClassDefault]
}

// Classify tags subject against comparand. It is total: every kind and
// every present/missing combination yields exactly one classification.
func Classify(kind Kind, subject, comparand Value) Classification {
	if !subject.Present {
		return ClassUnavailable
	}

	switch kind {
	case KindCost:
		if !comparand.Present {
			return ClassNeutral
		}
		switch {
		case subject.Number < comparand.Number:
			return ClassBetter
		case subject.Number > comparand.Number:
			return ClassWorse
		default:
			return ClassEqual
		}
	case KindDuration:
		return ClassNeutral
	case KindCredits:
		return ClassCredits
	default:
		return ClassDefault
	}
}
