package course

import (
	"regexp"
	"strings"
)

var (
	calPattern   = regexp.MustCompile(`(?i)\[%cal\s+([^\]]+)\]`)
	cslPattern   = regexp.MustCompile(`(?i)\[%csl\s+([^\]]+)\]`)
	arrowPattern = regexp.MustCompile(`(?i)^([a-z])([a-h][1-8])([a-h][1-8])$`)
	spotPattern  = regexp.MustCompile(`(?i)^([a-z])([a-h][1-8])$`)
)

// ParseComment splits a PGN comment into its readable text and the
// [%cal]/[%csl] drawing commands embedded in it.
func ParseComment(comment string) (string, Annotations) {
	var ann Annotations
	for _, m := range calPattern.FindAllStringSubmatch(comment, -1) {
		for _, item := range strings.Split(m[1], ",") {
			parts := arrowPattern.FindStringSubmatch(strings.TrimSpace(item))
			if parts == nil {
				continue
			}
			ann.Arrows = append(ann.Arrows, Arrow{
				From:  strings.ToLower(parts[2]),
				To:    strings.ToLower(parts[3]),
				Color: annotationColor(parts[1]),
			})
		}
	}
	for _, m := range cslPattern.FindAllStringSubmatch(comment, -1) {
		for _, item := range strings.Split(m[1], ",") {
			parts := spotPattern.FindStringSubmatch(strings.TrimSpace(item))
			if parts == nil {
				continue
			}
			ann.Highlights = append(ann.Highlights, Highlight{
				Square: strings.ToLower(parts[2]),
				Color:  annotationColor(parts[1]),
			})
		}
	}
	text := cslPattern.ReplaceAllString(calPattern.ReplaceAllString(comment, ""), "")
	return strings.Join(strings.Fields(text), " "), ann
}

func annotationColor(code string) string {
	switch strings.ToUpper(code) {
	case "R":
		return "red"
	case "Y":
		return "yellow"
	case "B":
		return "blue"
	case "O":
		return "orange"
	}
	return "green"
}
