package notes

import "strings"

// Filter narrows a note slice by exact category and case-insensitive
// substring match against the note text and workflow assignee. Empty
// arguments match everything; input order is preserved.
func Filter(notesList []*Note, category Category, term string) []*Note {
	needle := strings.ToLower(strings.TrimSpace(term))

	out := make([]*Note, 0, len(notesList))
	for _, n := range notesList {
		if category != "" && n.Category != category {
			continue
		}
		if needle != "" && !matches(n, needle) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func matches(n *Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Text), needle) {
		return true
	}
	if n.Workflow != nil && strings.Contains(strings.ToLower(n.Workflow.AssignedTo), needle) {
		return true
	}
	return false
}
