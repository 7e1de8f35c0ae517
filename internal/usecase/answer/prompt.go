package answer

import (
	"fmt"
	"strings"

	"github.com/alrashid-cloud/ragserve/internal/domain"
)

// systemPreamble opens every grounding prompt.
const systemPreamble = "You are AlRashid, a helpful assistant for a restaurant in Saudi Arabia. " +
	"Answer the question based on the provided context."

// BuildPrompt formats retrieved rows and the query into a single
// grounding prompt. Empty sections are omitted entirely; the literal
// query is always present.
func BuildPrompt(ret domain.Retrieval) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\n")

	if len(ret.FAQs) > 0 {
		b.WriteString("FAQs:\n")
		for _, faq := range ret.FAQs {
			fmt.Fprintf(&b, "- Q: %s A: %s\n", faq["question"], faq["answer"])
		}
		b.WriteString("\n")
	}

	if len(ret.MenuItems) > 0 {
		b.WriteString("Menu Items:\n")
		for _, item := range ret.MenuItems {
			fmt.Fprintf(&b, "- %s: %s (Ingredients: %s, Allergens: %s)\n",
				item["item_name"], item["description"], item["ingredients"], item["allergens"])
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User Query: %s\n", ret.Query)
	return b.String()
}
