package apidocs

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

var (
	pragmaRegex    = regexp.MustCompile(`^<!--\s*@page\s+(\w+)\s*:\s*([^>]+?)\s*-->$`)
	directiveRegex = regexp.MustCompile(`^([a-z_][a-z0-9_]*)(?:\(([^)]*)\))?$`)
)

// Parser parses raw API documentation pages into a [Document].
//
// The grammar is line-oriented: a line whose first non-blank rune is '{' is
// a directive line and must close with '}' at the end of the line. Braces
// anywhere else are ordinary prose and pass through untouched. This matches
// how the documentation pages are written (one macro per line) and keeps
// literal text reproducible byte for byte.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParsePage parses a documentation page into its constituent parts.
//
// It fails with [ErrMalformedDirective] when a directive line is not
// terminated, and with [ErrUnbalancedTabBlock] when {start_tabs} and
// {end_tabs} markers do not pair up.
func (p *Parser) ParsePage(r io.Reader, md MetaData) (*Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Metadata: md,
	}

	// Pragma comments are only honored at the top of the file, before any
	// other content.
	atTopOfFile := true

	var (
		literal strings.Builder
		// non-nil while inside a {start_tabs} block
		block *TabBlock
		// inside a ``` fence; everything there is literal, including braces
		inFence bool
	)

	flushLiteral := func() {
		if literal.Len() == 0 {
			return
		}
		seg := Segment{Kind: KindLiteral, Literal: literal.String()}
		literal.Reset()
		if block != nil {
			appendToBlock(block, seg)
			return
		}
		doc.Segments = append(doc.Segments, seg)
	}

	lines := strings.SplitAfter(string(content), "\n")
	lineNo := 0
	for _, line := range lines {
		if line == "" {
			// SplitAfter yields a trailing empty element when the content
			// ends with a newline
			continue
		}
		lineNo++

		bare := strings.TrimSuffix(line, "\n")
		trimmed := strings.TrimSpace(bare)

		if atTopOfFile {
			if m := pragmaRegex.FindStringSubmatch(trimmed); m != nil {
				p.applyPragma(&doc.Pragmas, m[1], m[2])
				continue
			}
			if trimmed != "" {
				atTopOfFile = false
			}
		}

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			literal.WriteString(line)
			continue
		}

		if inFence || !strings.HasPrefix(trimmed, "{") {
			literal.WriteString(line)
			continue
		}

		pos := Position{Line: lineNo, Col: strings.Index(bare, "{") + 1}
		if !strings.HasSuffix(trimmed, "}") {
			return nil, newDirectiveError(ErrMalformedDirective, trimmed, pos,
				"a directive was started with '{' but not finished with '}'")
		}

		d, err := parseDirective(trimmed, pos)
		if err != nil {
			return nil, err
		}

		switch d.Name {
		case "start_tabs":
			flushLiteral()
			if block != nil {
				return nil, newDirectiveError(ErrUnbalancedTabBlock, trimmed, pos,
					"{start_tabs} inside an open tab block")
			}
			block = &TabBlock{Pos: pos}
		case "end_tabs":
			if block == nil {
				return nil, newDirectiveError(ErrUnbalancedTabBlock, trimmed, pos,
					"{end_tabs} without a matching {start_tabs}")
			}
			flushLiteral()
			doc.Segments = append(doc.Segments, Segment{Kind: KindTabBlock, Tabs: block})
			block = nil
		case "tab":
			if block == nil {
				return nil, newDirectiveError(ErrUnbalancedTabBlock, trimmed, pos,
					"{tab|...} outside of a tab block")
			}
			if len(d.PipeArgs) != 1 || d.PipeArgs[0] == "" {
				return nil, newDirectiveError(ErrMalformedDirective, trimmed, pos,
					"{tab|...} requires exactly one label")
			}
			flushLiteral()
			block.Tabs = append(block.Tabs, Tab{Label: d.PipeArgs[0]})
		default:
			flushLiteral()
			seg := Segment{Kind: KindDirective, Directive: d}
			if block != nil {
				if len(block.Tabs) == 0 {
					return nil, newDirectiveError(ErrUnbalancedTabBlock, trimmed, pos,
						"directive before the first {tab|...} of a tab block")
				}
				appendToBlock(block, seg)
				continue
			}
			doc.Segments = append(doc.Segments, seg)
		}
	}

	if block != nil {
		return nil, newDirectiveError(ErrUnbalancedTabBlock, "{start_tabs}", block.Pos,
			"{start_tabs} was never closed with {end_tabs}")
	}
	flushLiteral()

	slog.Debug("parsed page", "source", md.Source, "segments", len(doc.Segments))

	return doc, nil
}

// appendToBlock attaches a segment to the most recent tab. Literal runs
// between {start_tabs} and the first {tab} are dropped; in practice they
// are only blank separator lines.
func appendToBlock(block *TabBlock, seg Segment) {
	if len(block.Tabs) == 0 {
		return
	}
	tab := &block.Tabs[len(block.Tabs)-1]
	tab.Segments = append(tab.Segments, seg)
}

// parseDirective parses the inside of a single directive line.
//
// A directive looks like {name}, {name(a, b)}, {name|x|y} or
// {name(a)|x|y}. Positional arguments live in the parentheses, pipe
// arguments after each '|'. Whitespace around arguments is insignificant.
func parseDirective(raw string, pos Position) (*Directive, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "{"), "}")

	parts := strings.Split(inner, "|")
	head := strings.TrimSpace(parts[0])

	m := directiveRegex.FindStringSubmatch(head)
	if m == nil {
		return nil, newDirectiveError(ErrMalformedDirective, raw, pos,
			fmt.Sprintf("cannot parse directive head %q", head))
	}

	d := &Directive{
		Name: m[1],
		Raw:  raw,
		Pos:  pos,
	}

	if m[2] != "" {
		for _, a := range strings.Split(m[2], ",") {
			d.Args = append(d.Args, strings.TrimSpace(a))
		}
	}
	for _, a := range parts[1:] {
		d.PipeArgs = append(d.PipeArgs, strings.TrimSpace(a))
	}

	return d, nil
}

// applyPragma sets a pragma value from a page comment.
//
// A pragma line may look like this: <!-- @page output: dev_fetch_api_key.md -->
//
// Unknown keys are ignored so pages can carry annotations for other tools.
func (p *Parser) applyPragma(pragma *Pragma, key, value string) {
	slog.Debug("parsed pragma key value pair", "key", key, "value", value)

	switch key {
	case string(PragmaOutput):
		pragma.Output = value
	case string(PragmaFormat):
		pragma.Format = value
	default:
		slog.Debug("unknown pragma key", "key", key)
	}
}
