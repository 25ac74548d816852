package native

import (
	"bytes"
	"strings"

	"github.com/beevik/etree"
)

// defaultColor is what currentColor resolves to when no ancestor sets color.
const defaultColor = "black"

// paintAttrs are the presentation attributes that may hold currentColor.
var paintAttrs = []string{"fill", "stroke", "stop-color", "flood-color", "lighting-color"}

// resolveCurrentColor replaces every currentColor paint in markup with the
// inherited color value. oksvg cannot parse currentColor, so markup is
// rewritten before it is loaded. Markup without currentColor is returned
// unchanged.
func resolveCurrentColor(markup []byte) ([]byte, error) {
	if !bytes.Contains(bytes.ToLower(markup), []byte("currentcolor")) {
		return markup, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(markup); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return markup, nil
	}
	resolvePaint(root, defaultColor)
	return doc.WriteToBytes()
}

// resolvePaint rewrites el and its descendants. inherited is the color
// value in effect on el's parent.
func resolvePaint(el *etree.Element, inherited string) {
	current := inherited
	if c := colorOf(el); c != "" && !isCurrentColor(c) && c != "inherit" {
		current = c
	}

	for _, name := range paintAttrs {
		if a := el.SelectAttr(name); a != nil && isCurrentColor(a.Value) {
			a.Value = current
		}
	}
	if a := el.SelectAttr("style"); a != nil {
		a.Value = replaceCurrentColor(a.Value, current)
	}
	if a := el.SelectAttr("color"); a != nil && isCurrentColor(a.Value) {
		a.Value = current
	}

	for _, child := range el.ChildElements() {
		resolvePaint(child, current)
	}
}

// colorOf returns el's own color, from its style declaration or attribute.
func colorOf(el *etree.Element) string {
	for _, decl := range strings.Split(el.SelectAttrValue("style", ""), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(name) == "color" {
			return strings.TrimSpace(value)
		}
	}
	return strings.TrimSpace(el.SelectAttrValue("color", ""))
}

func isCurrentColor(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "currentColor")
}

// replaceCurrentColor substitutes every case-insensitive currentColor token
// in a style declaration list.
func replaceCurrentColor(style, color string) string {
	const token = "currentcolor"
	lower := strings.ToLower(style)
	if !strings.Contains(lower, token) {
		return style
	}

	var b strings.Builder
	for {
		i := strings.Index(lower, token)
		if i < 0 {
			b.WriteString(style)
			return b.String()
		}
		b.WriteString(style[:i])
		b.WriteString(color)
		style, lower = style[i+len(token):], lower[i+len(token):]
	}
}
