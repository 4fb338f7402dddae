package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/onboarding/pkg/wizards"
)

// doneID is the node for the terminal state.
const doneID = "done"

// Overlay marks the position of a live session on the diagram.
type Overlay struct {
	// CurrentStep is the 1-based step; TotalSteps+1 highlights the terminal node.
	CurrentStep int
}

// GenerateMermaid produces a Mermaid flowchart of a wizard.
// Shapes follow what a step does:
//   - first step: ((Circle))
//   - step verified by a gateway call: [[Subroutine]]
//   - plain input step: [/Parallelogram/]
//   - terminal state: ([Stadium])
//
// Forward edges carry the submit label; dotted edges are Back.
func GenerateMermaid(d wizards.Description, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, step := range d.Steps {
		id := nodeID(step)

		opener, closer := "[/", "/]"
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case step.Verified:
			opener, closer = "[[", "]]"
		}

		label := step.Name
		if step.Title != "" {
			label = fmt.Sprintf("%d. %s", step.Position, escape(step.Title))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)
	}
	fmt.Fprintf(&sb, "    %s([\"%s\"])\n", doneID, doneID)

	for i, step := range d.Steps {
		next := doneID
		if i+1 < len(d.Steps) {
			next = nodeID(d.Steps[i+1])
		}
		submit := step.SubmitLabel
		if submit == "" {
			submit = "Next"
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", nodeID(step), escape(submit), next)
		if i > 0 {
			fmt.Fprintf(&sb, "    %s -. back .-> %s\n", nodeID(step), nodeID(d.Steps[i-1]))
		}
	}

	if overlay != nil && overlay.CurrentStep > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		for i, step := range d.Steps {
			switch {
			case i+1 < overlay.CurrentStep:
				fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(step))
			case i+1 == overlay.CurrentStep:
				fmt.Fprintf(&sb, "    class %s current;\n", nodeID(step))
			}
		}
		if overlay.CurrentStep > len(d.Steps) {
			fmt.Fprintf(&sb, "    class %s current;\n", doneID)
		}
	}

	return sb.String()
}

func nodeID(step wizards.StepDescription) string {
	return fmt.Sprintf("s%d_%s", step.Position, sanitizeMermaidID(step.Name))
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', '/', '\\', ' ':
			return '_'
		}
		return r
	}, id)
}
