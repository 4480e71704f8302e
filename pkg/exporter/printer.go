package exporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"cleanview/pkg/translate"
	"cleanview/pkg/types"
)

// StatusText 返回状态栏文本，Active 时带上规则数
func StatusText(s types.Status) string {
	if s.Active {
		return fmt.Sprintf("CleanView (%d)", s.PatternCount)
	}
	return "CleanView"
}

// PrintStatus 打印状态行
func PrintStatus(w io.Writer, s types.Status) {
	state := "inactive"
	if s.Active {
		state = "active"
	}
	fmt.Fprintf(w, "%s\n", StatusText(s))
	fmt.Fprintf(w, "State:    %s\n", state)
	fmt.Fprintf(w, "Patterns: %d\n", s.PatternCount)
}

// PrintPatterns 以表格形式打印规则及其翻译结果 (仿 git ls-tree)
func PrintPatterns(w io.Writer, rules []types.Rule) error {
	if len(rules) == 0 {
		_, err := fmt.Fprintln(w, "No patterns found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "PATTERN\tSOURCE\tKEY\n")
	for _, r := range rules {
		key, ok := translate.Translate(r.Pattern)
		if !ok {
			key = "(dropped)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Pattern, r.Source, key)
	}
	return tw.Flush()
}

// PrintCheck 打印单个路径的判定结果以及 exclusion map 中命中的 key
func PrintCheck(w io.Writer, path string, ignored bool, keys []string) {
	if ignored {
		fmt.Fprintf(w, "%s: ignored\n", path)
	} else {
		fmt.Fprintf(w, "%s: not ignored\n", path)
	}
	for _, k := range keys {
		fmt.Fprintf(w, "  matched %s\n", k)
	}
}
