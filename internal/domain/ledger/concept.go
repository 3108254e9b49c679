package ledger

// Concept identifies which bucket of an installment a payment application
// settles. Applications always settle mora first, then interest, then capital.
type Concept string

const (
	ConceptMora     Concept = "MORA"
	ConceptInterest Concept = "INTERES"
	ConceptCapital  Concept = "CAPITAL"
)

// IsValid checks if the concept is a known value
func (c Concept) IsValid() bool {
	switch c {
	case ConceptMora, ConceptInterest, ConceptCapital:
		return true
	}
	return false
}

func (c Concept) String() string {
	return string(c)
}

// waterfallOrder is the settlement order within a single installment
var waterfallOrder = []Concept{ConceptMora, ConceptInterest, ConceptCapital}
