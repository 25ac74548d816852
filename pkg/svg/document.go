package svg

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/spritetag/pkg/errors"
)

// Namespace is the SVG namespace URI written on every generated root.
const Namespace = "http://www.w3.org/2000/svg"

// DefaultViewBox is used for symbols that do not declare a viewBox.
const DefaultViewBox = "0 0 24 24"

// Element is a node of a parsed document.
type Element = etree.Element

// Attr is an attribute of an [Element].
type Attr = etree.Attr

// Document is a parsed SVG document whose root is known to be <svg>.
type Document struct {
	doc *etree.Document
	src string
}

// Parse parses src as an SVG document.
// It fails with INVALID_SVG when src is not well-formed XML or the root
// element's local name is not "svg" (compared case-insensitively).
func Parse(src string) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.ValidateInput = true
	if err := doc.ReadFromString(src); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSVG, err, "parse document")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidSVG, "document has no root element")
	}
	if !strings.EqualFold(root.Tag, "svg") {
		return nil, errors.New(errors.ErrCodeInvalidSVG, "root element is <%s>, want <svg>", root.FullTag())
	}
	return &Document{doc: doc, src: src}, nil
}

// Root returns the document's <svg> element.
func (d *Document) Root() *Element { return d.doc.Root() }

// Source returns the text the document was parsed from, unmodified.
func (d *Document) Source() string { return d.src }

// Symbols returns every <symbol> element in document (preorder) order.
func (d *Document) Symbols() []*Element {
	var out []*Element
	walk(d.Root(), func(e *Element) {
		if e.Tag == "symbol" {
			out = append(out, e)
		}
	})
	return out
}

// TopLevelGroups returns the <g> children of the root element.
// Nested groups are not included.
func (d *Document) TopLevelGroups() []*Element {
	var out []*Element
	for _, e := range d.Root().ChildElements() {
		if e.Tag == "g" {
			out = append(out, e)
		}
	}
	return out
}

// Defs returns the <defs> children of the root element.
func (d *Document) Defs() []*Element {
	var out []*Element
	for _, e := range d.Root().ChildElements() {
		if e.Tag == "defs" {
			out = append(out, e)
		}
	}
	return out
}

// Namespaces returns the prefixed namespace declarations (xmlns:*) of the root.
func (d *Document) Namespaces() []Attr {
	var out []Attr
	for _, a := range d.Root().Attr {
		if a.Space == "xmlns" {
			out = append(out, a)
		}
	}
	return out
}

// ID returns the element's id attribute, or "" when absent.
func ID(e *Element) string {
	return e.SelectAttrValue("id", "")
}

// ViewBox returns the element's viewBox attribute, or dflt when the attribute
// is absent or empty.
func ViewBox(e *Element, dflt string) string {
	if vb := e.SelectAttrValue("viewBox", ""); vb != "" {
		return vb
	}
	return dflt
}

// Title returns the trimmed text content of the first <title> element
// below e (e itself excluded), or "" when there is none.
func Title(e *Element) string {
	var title *Element
	walk(e, func(c *Element) {
		if title == nil && c != e && c.Tag == "title" {
			title = c
		}
	})
	if title == nil {
		return ""
	}
	return strings.TrimSpace(textContent(title))
}

// Wrap returns a standalone SVG document whose root carries the SVG
// namespace, the given namespace declarations and viewBox, and a deep copy
// of inner's children. Copies of the prepend elements (typically <defs>)
// are placed before the children. None of the inputs are modified.
func Wrap(viewBox string, inner *Element, ns []Attr, prepend ...*Element) (string, error) {
	root := etree.NewElement("svg")
	root.CreateAttr("xmlns", Namespace)
	for _, a := range ns {
		root.CreateAttr(a.FullKey(), a.Value)
	}
	root.CreateAttr("viewBox", viewBox)
	for _, e := range prepend {
		root.AddChild(e.Copy())
	}

	cp := inner.Copy()
	children := append([]etree.Token(nil), cp.Child...)
	for _, c := range children {
		root.AddChild(c)
	}

	doc := etree.NewDocument()
	doc.SetRoot(root)
	s, err := doc.WriteToString()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize document")
	}
	return s, nil
}

// walk visits e and its descendant elements in preorder.
func walk(e *Element, fn func(*Element)) {
	fn(e)
	for _, c := range e.ChildElements() {
		walk(c, fn)
	}
}

func textContent(e *Element) string {
	var sb strings.Builder
	var visit func(*Element)
	visit = func(el *Element) {
		for _, t := range el.Child {
			switch v := t.(type) {
			case *etree.CharData:
				sb.WriteString(v.Data)
			case *etree.Element:
				visit(v)
			}
		}
	}
	visit(e)
	return sb.String()
}

// Path returns the child-element indices leading from the document root to
// e, or nil when e is the root. Text and comment nodes are not counted, so
// the path addresses the same element in any DOM built from the same source.
func Path(e *Element) []int {
	var rev []int
	for cur := e; cur.Parent() != nil && cur.Parent().Parent() != nil; cur = cur.Parent() {
		rev = append(rev, childIndex(cur.Parent(), cur))
	}
	out := make([]int, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func childIndex(parent, child *Element) int {
	for i, c := range parent.ChildElements() {
		if c == child {
			return i
		}
	}
	return -1
}
