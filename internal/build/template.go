package build

import "strings"

const (
	placeholderSource = "{src}"
	placeholderOutput = "{out}"
)

// Expands {src} and {out} in every element of argv.
//
// The input slice is not modified.
func Expand(argv []string, src, out string) []string {
	r := strings.NewReplacer(placeholderSource, src, placeholderOutput, out)
	expanded := make([]string, len(argv))
	for i, arg := range argv {
		expanded[i] = r.Replace(arg)
	}
	return expanded
}
