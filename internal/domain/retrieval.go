package domain

// Retrieval is the structured grounding context for one query: the
// verbatim query plus, per source, the full matched rows ordered by
// ascending distance (nearest first), each list at most top_k long.
type Retrieval struct {
	Query     string
	FAQs      []Row
	MenuItems []Row
}
