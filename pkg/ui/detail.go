package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/treekit/pkg/tree"
)

// DetailMarkdown describes node id as markdown: identity, state, the path
// from its root, and its direct children.
func DetailMarkdown(ctrl *tree.Controller, id string) string {
	store := ctrl.Store()
	node, ok := store.FindNode(id)
	if !ok {
		return "_Nothing selected._"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", node.DisplayLabel()))

	depth, _ := store.DepthOf(id)
	sb.WriteString(fmt.Sprintf("- **ID**: `%s`\n", node.ID))
	sb.WriteString(fmt.Sprintf("- **Depth**: %d\n", depth))
	sb.WriteString(fmt.Sprintf("- **Children**: %d\n", len(node.Children)))

	var state []string
	if !node.IsLeaf() {
		if ctrl.IsExpanded(id) {
			state = append(state, "expanded")
		} else {
			state = append(state, "collapsed")
		}
	}
	if ctrl.IsSelected(id) {
		state = append(state, "selected")
	}
	if node.Disabled {
		state = append(state, "disabled")
	}
	if len(state) > 0 {
		sb.WriteString(fmt.Sprintf("- **State**: %s\n", strings.Join(state, ", ")))
	}

	if ancestors := store.Ancestors(id); len(ancestors) > 0 {
		sb.WriteString("\n## Path\n\n")
		parts := make([]string, 0, len(ancestors)+1)
		for _, anc := range ancestors {
			if n, ok := store.FindNode(anc); ok {
				parts = append(parts, n.DisplayLabel())
			}
		}
		parts = append(parts, "**"+node.DisplayLabel()+"**")
		sb.WriteString(strings.Join(parts, " › "))
		sb.WriteString("\n")
	}

	if len(node.Children) > 0 {
		sb.WriteString("\n## Children\n\n")
		for _, child := range node.Children {
			line := fmt.Sprintf("- %s `%s`", child.DisplayLabel(), child.ID)
			if child.Disabled {
				line = fmt.Sprintf("- ~~%s~~ `%s`", child.DisplayLabel(), child.ID)
			}
			if !child.IsLeaf() {
				line += fmt.Sprintf(" (%d)", len(child.Children))
			}
			sb.WriteString(line + "\n")
		}
	}
	return sb.String()
}
