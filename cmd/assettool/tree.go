package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goopsie/assetdecode/pkg/asset"
	"github.com/goopsie/assetdecode/pkg/model"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	classStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	refStyle      = lipgloss.NewStyle().Faint(true)
	serviceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	propertyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const indent = "  "

// renderTree lists every instance depth first, one line per node followed
// by its properties in name order.
func renderTree(res asset.Result) string {
	var b strings.Builder

	if !res.Valid {
		fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(res.AssetID), errorStyle.Render("invalid"))
		if res.Err != nil {
			fmt.Fprintf(&b, "%s%s\n", indent, errorStyle.Render(res.Err.Error()))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s (%d instances)\n",
		headerStyle.Render(res.AssetID), res.Format, res.Root.Len())

	keys := make([]string, 0, len(res.Root.Metadata))
	for k := range res.Root.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s@%s = %s\n", indent, k, res.Root.Metadata[k])
	}

	res.Root.Walk(func(h model.Handle, depth int) bool {
		inst := res.Root.Node(h)
		pad := strings.Repeat(indent, depth+1)

		line := pad + classStyle.Render(inst.ClassName) + " " + refStyle.Render("#"+inst.Reference)
		if inst.IsService {
			line += " " + serviceStyle.Render("service")
		}
		b.WriteString(line + "\n")

		names := make([]string, 0, len(inst.Properties))
		for name := range inst.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v := inst.Properties[name]
			fmt.Fprintf(&b, "%s%s%s: %s\n", pad, indent, propertyStyle.Render(name), formatProperty(v))
		}
		return true
	})
	return b.String()
}

func formatProperty(v model.Value) string {
	if s, ok := v.Str(); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%s(%s)", v.Kind(), v)
}
