package export

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// GenerateMarkdown renders rows as a nested checklist followed by a
// mermaid graph of the visible parent/child edges.
func GenerateMarkdown(rows []Row, title string) string {
	var sb strings.Builder

	if title == "" {
		title = "Tree"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC1123)))

	// Summary
	selected, collapsed := 0, 0
	for _, r := range rows {
		if r.Selected {
			selected++
		}
		if !r.Leaf && !r.Expanded {
			collapsed++
		}
	}
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Visible**: %d\n", len(rows)))
	sb.WriteString(fmt.Sprintf("- **Selected**: %d\n", selected))
	sb.WriteString(fmt.Sprintf("- **Collapsed**: %d\n\n", collapsed))

	sb.WriteString("## Outline\n\n")
	for _, r := range rows {
		sb.WriteString(outlineLine(r))
	}
	sb.WriteString("\n")

	if edges := mermaidEdges(rows); edges != "" {
		sb.WriteString("## Graph\n\n")
		sb.WriteString("```mermaid\ngraph TD\n")
		sb.WriteString(edges)
		sb.WriteString("```\n")
	}
	return sb.String()
}

// OutlineMarkdown renders only the checklist, for embedding in other views.
func OutlineMarkdown(rows []Row) string {
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(outlineLine(r))
	}
	return sb.String()
}

func outlineLine(r Row) string {
	box := "[ ]"
	if r.Selected {
		box = "[x]"
	}
	label := escapeMarkdown(r.Label)
	switch {
	case r.Disabled:
		label = "~~" + label + "~~"
	case !r.Leaf && !r.Expanded:
		label += " …"
	}
	return fmt.Sprintf("%s- %s %s `%s`\n", strings.Repeat("  ", r.Depth), box, label, r.ID)
}

func escapeMarkdown(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "'", "[", `\[`, "]", `\]`)
	return r.Replace(s)
}

func mermaidEdges(rows []Row) string {
	var sb strings.Builder
	for i, r := range rows {
		// Mermaid node ids must be plain identifiers; use row positions
		sb.WriteString(fmt.Sprintf("    n%d[\"%s\"]\n", i, mermaidLabel(r.Label)))
	}
	hasLinks := false
	for i, r := range rows {
		if r.Parent >= 0 {
			sb.WriteString(fmt.Sprintf("    n%d --> n%d\n", r.Parent, i))
			hasLinks = true
		}
	}
	if !hasLinks {
		return ""
	}
	return sb.String()
}

func mermaidLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.NewReplacer("[", "", "]", "", "(", "", ")", "").Replace(s)
	if r := []rune(s); len(r) > 30 {
		s = string(r[:27]) + "..."
	}
	return s
}

// SaveMarkdownToFile writes the report to filename.
func SaveMarkdownToFile(rows []Row, title, filename string) error {
	if err := os.WriteFile(filename, []byte(GenerateMarkdown(rows, title)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}
