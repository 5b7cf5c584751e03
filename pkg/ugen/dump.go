package ugen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tapirlisp/tapirgo/pkg/transport"
)

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func dumpParenList(name string, items []string) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(name)
	b.WriteString(" ")
	for i, it := range items {
		b.WriteString(it)
		if i != len(items)-1 {
			b.WriteString(" ")
		}
	}
	b.WriteString(")")
	return b.String()
}

func dumpValue(v Value, shared []Aug) string {
	switch v.Kind {
	case ValueNumber:
		return formatNum(v.Number)
	case ValueTable:
		items := make([]string, len(v.Table))
		for i, n := range v.Table {
			items[i] = formatNum(n)
		}
		return dumpParenList("table", items)
	case ValuePattern:
		return dumpParenList("pat", v.Pattern)
	case ValueShared:
		return fmt.Sprintf("shared-%d", v.Shared)
	case ValueUg:
		return dumpUnit(v.Ug.Dump(shared), shared)
	default:
		return ""
	}
}

func dumpUg(name string, slots []Slot, rest []Value, shared []Aug) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(name)
	b.WriteString(" ")
	for i, s := range slots {
		d := dumpValue(s.Value, shared)
		b.WriteString(d)
		if (len(d) != 0 && i != len(slots)-1) || len(rest) > 0 {
			b.WriteString(" ")
		}
	}
	for i, v := range rest {
		b.WriteString(dumpValue(v, shared))
		if i != len(rest)-1 {
			b.WriteString(" ")
		}
	}
	b.WriteString(")")
	return b.String()
}

func dumpUnit(n UgNode, shared []Aug) string {
	if n.IsVal {
		return dumpValue(n.Val, shared)
	}
	return dumpUg(n.Op, n.Slots, n.Rest, shared)
}

// Dump renders root's graph as canonical tapirlisp source text: an
// environment header (bpm, measure), a shared-units section binding
// every multiply-referenced node to a `shared-N` name, and the unit
// graph itself with shared nodes replaced by references.
func Dump(root Aug, t *transport.Transport) string {
	shared := CollectShared(root)

	var b strings.Builder
	b.WriteString(";; environment\n")
	fmt.Fprintf(&b, "(bpm %s)\n", formatNum(t.BPM))
	fmt.Fprintf(&b, "(measure %d %d)\n", t.Measure.Beat, t.Measure.Note)

	b.WriteString("\n;; shared units\n")
	for idx, su := range shared {
		dumped := dumpUnit(su.Dump(shared), shared)
		fmt.Fprintf(&b, "(def shared-%d %s)\n", idx, dumped)
	}

	b.WriteString("\n;; unit graph\n")
	fmt.Fprintf(&b, "%s\n", dumpUnit(root.Dump(shared), shared))

	return b.String()
}
