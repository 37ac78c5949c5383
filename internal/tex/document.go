// Package tex parses and rewrites LaTeX manuscripts: comment stripping,
// recursive inlining of \input and \InputIfFileExists from disk or from a git
// commit, root document discovery, bibliography and figure handling.
package tex

import "strings"

// NodeKind distinguishes text spans from recognised macro invocations.
type NodeKind int

const (
	TextNode NodeKind = iota
	MacroNode
)

// Node is one span of a parsed document. Start and End are byte offsets
// into the source; Text is the source slice they cover.
type Node struct {
	Kind  NodeKind
	Start int
	End   int
	Text  string

	// Macro fields, set only for MacroNode.
	Name        string
	Optional    string // raw content of [..], without brackets
	HasOptional bool
	Args        []string // raw content of each {..}, without braces
}

// Arg returns the i-th mandatory argument trimmed of surrounding whitespace,
// or "" when it is absent.
func (n Node) Arg(i int) string {
	if i < 0 || i >= len(n.Args) {
		return ""
	}
	return strings.TrimSpace(n.Args[i])
}

// MacroSpec describes how many arguments a recognised macro takes.
type MacroSpec struct {
	Arity    int  // mandatory {..} arguments
	Optional bool // accepts one leading [..] argument
	Star     bool // accepts a * after the name
}

// MacroSet maps control-word names (without backslash) to their argument shape.
type MacroSet map[string]MacroSpec

// IncludeMacros are the inclusion forms the inliners resolve.
var IncludeMacros = MacroSet{
	"input":             {Arity: 1},
	"InputIfFileExists": {Arity: 3},
}

// Document is a flat node list over an immutable source text.
type Document struct {
	src   string
	Nodes []Node
}

// Parse scans text and returns a Document whose macro nodes are the
// invocations of the macros in set. Comments and escaped characters are text.
func Parse(text string, set MacroSet) *Document {
	doc := &Document{src: text}
	textStart := 0

	flush := func(end int) {
		if end > textStart {
			doc.Nodes = append(doc.Nodes, Node{Kind: TextNode, Start: textStart, End: end, Text: text[textStart:end]})
		}
	}

	i := 0
	for i < len(text) {
		switch text[i] {
		case '%':
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				i = len(text)
			} else {
				i += nl
			}
		case '\\':
			if i+1 >= len(text) || !isLetter(text[i+1]) {
				i += 2
				continue
			}
			j := i + 1
			for j < len(text) && isLetter(text[j]) {
				j++
			}
			spec, ok := set[text[i+1:j]]
			if !ok {
				i = j
				continue
			}
			node := scanMacro(text, i, j, spec)
			flush(i)
			doc.Nodes = append(doc.Nodes, node)
			textStart = node.End
			i = node.End
		default:
			i++
		}
	}
	flush(len(text))
	return doc
}

// scanMacro reads the arguments of the control word text[start:nameEnd].
// Parsing stops at the first missing or unbalanced argument.
func scanMacro(text string, start, nameEnd int, spec MacroSpec) Node {
	n := Node{Kind: MacroNode, Start: start, Name: text[start+1 : nameEnd]}
	pos := nameEnd

	if spec.Star && pos < len(text) && text[pos] == '*' {
		pos++
	}

	if spec.Optional {
		q := skipSpace(text, pos)
		if q < len(text) && text[q] == '[' {
			if end, ok := matchGroup(text, q, '[', ']'); ok {
				n.Optional = text[q+1 : end]
				n.HasOptional = true
				pos = end + 1
			}
		}
	}

	for k := 0; k < spec.Arity; k++ {
		q := skipSpace(text, pos)
		if q >= len(text) || text[q] != '{' {
			break
		}
		end, ok := matchGroup(text, q, '{', '}')
		if !ok {
			break
		}
		n.Args = append(n.Args, text[q+1:end])
		pos = end + 1
	}

	n.End = pos
	n.Text = text[start:pos]
	return n
}

// matchGroup returns the index of the delimiter closing the group opened at
// text[open]. Escaped delimiters and comments are skipped; braces nest
// inside brackets.
func matchGroup(text string, open int, left, right byte) (int, bool) {
	depth := 0
	braces := 0
	for i := open; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\\':
			i++
		case c == '%':
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				return 0, false
			}
			i += nl
		case left == '[' && c == '{':
			braces++
		case left == '[' && c == '}':
			braces--
		case c == left:
			depth++
		case c == right && braces == 0:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func skipSpace(text string, pos int) int {
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// String reproduces the source text.
func (d *Document) String() string {
	return d.src
}

// Macros returns the macro nodes in document order.
func (d *Document) Macros() []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Kind == MacroNode {
			out = append(out, n)
		}
	}
	return out
}

// Render serialises the document, substituting the text returned by replace
// for each macro node where it reports true.
func (d *Document) Render(replace func(Node) (string, bool)) string {
	var b strings.Builder
	b.Grow(len(d.src))
	for _, n := range d.Nodes {
		if n.Kind == MacroNode {
			if s, ok := replace(n); ok {
				b.WriteString(s)
				continue
			}
		}
		b.WriteString(n.Text)
	}
	return b.String()
}
