package apidocs

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// exampleSiteURL is the placeholder server used in generated usage examples.
const exampleSiteURL = "https://example.zulipchat.com/api/v1"

var fixtureArgRegex = regexp.MustCompile(`^fixture\((\d+)\)$`)

// A handlerFunc expands one directive into its replacement text. The
// replacement stands in for the whole directive line.
type handlerFunc func(e *Expander, d *Directive) (string, error)

// registry maps directive names to their handlers. Tab markers are handled
// structurally by the parser and never reach this table.
var registry = map[string]handlerFunc{
	"generate_api_description":     expandDescription,
	"generate_code_example":        expandCodeExample,
	"generate_api_arguments_table": expandArgumentsTable,
}

// Expander substitutes every directive of a parsed page with generated
// content. Expansion is a pure function of (document, spec, fixtures); the
// spec and fixture caches are internally synchronized, so a single Expander
// may serve many pages from concurrent goroutines.
type Expander struct {
	spec     *APISpec
	fixtures *FixtureStore

	// cache of secondary spec files named by arguments-table directives,
	// keyed by base name
	mu    sync.Mutex
	specs map[string]*APISpec
}

func NewExpander(spec *APISpec, fixtures *FixtureStore) *Expander {
	e := &Expander{
		spec:     spec,
		fixtures: fixtures,
		specs:    make(map[string]*APISpec),
	}
	if spec != nil && spec.Source != "" {
		e.specs[filepath.Base(spec.Source)] = spec
	}
	return e
}

// Expand renders the fully expanded page text. The first failing directive
// aborts the page; the returned error reports the directive's raw text and
// position. A page with no directives is returned unchanged.
func (e *Expander) Expand(doc *Document) (string, error) {
	var out strings.Builder
	if err := e.expandSegments(&out, doc.Segments); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (e *Expander) expandSegments(out *strings.Builder, segs []Segment) error {
	for _, seg := range segs {
		switch seg.Kind {
		case KindLiteral:
			out.WriteString(seg.Literal)
		case KindDirective:
			text, err := e.expandDirective(seg.Directive)
			if err != nil {
				return err
			}
			out.WriteString(text)
			out.WriteString("\n")
		case KindTabBlock:
			if err := e.expandTabBlock(out, seg.Tabs); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Expander) expandDirective(d *Directive) (string, error) {
	handler, ok := registry[d.Name]
	if !ok {
		return "", newDirectiveError(ErrUnknownDirective, d.Raw, d.Pos, d.Name)
	}

	slog.Debug("expanding directive", "name", d.Name, "line", d.Pos.Line)

	text, err := handler(e, d)
	if err != nil {
		return "", &DirectiveError{Err: err, Raw: d.Raw, Pos: d.Pos}
	}
	return text, nil
}

// expandTabBlock renders a tab block as a docsify-style tabbed section,
// preserving tab order.
func (e *Expander) expandTabBlock(out *strings.Builder, block *TabBlock) error {
	out.WriteString("<!-- tabs:start -->\n")
	for _, tab := range block.Tabs {
		fmt.Fprintf(out, "\n#### **%s**\n\n", tab.Label)
		if err := e.expandSegments(out, tab.Segments); err != nil {
			return err
		}
	}
	out.WriteString("\n<!-- tabs:end -->\n")
	return nil
}

// specFor resolves the spec file named by an arguments-table directive,
// loading and caching it relative to the primary spec's directory.
func (e *Expander) specFor(name string) (*APISpec, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.specs[name]; ok {
		return s, nil
	}

	dir := ""
	if e.spec != nil && e.spec.Source != "" {
		dir = filepath.Dir(e.spec.Source)
	}
	s, err := LoadAPISpec(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}

	e.specs[name] = s
	return s, nil
}

// {generate_api_description(/dev_fetch_api_key:post)}
func expandDescription(e *Expander, d *Directive) (string, error) {
	if len(d.Args) != 1 {
		return "", fmt.Errorf("%w: generate_api_description requires one endpoint argument", ErrMalformedDirective)
	}

	op, err := e.spec.Operation(d.Args[0])
	if err != nil {
		return "", err
	}

	return strings.TrimRight(op.Description, "\n"), nil
}

// {generate_api_arguments_table|zulip.yaml|/dev_fetch_api_key:post}
func expandArgumentsTable(e *Expander, d *Directive) (string, error) {
	if len(d.PipeArgs) != 2 {
		return "", fmt.Errorf("%w: generate_api_arguments_table requires |spec_file|endpoint", ErrMalformedDirective)
	}

	spec, err := e.specFor(d.PipeArgs[0])
	if err != nil {
		return "", err
	}

	op, err := spec.Operation(d.PipeArgs[1])
	if err != nil {
		return "", err
	}

	if len(op.Parameters) == 0 {
		return "This endpoint does not accept any parameters.", nil
	}

	var b strings.Builder
	b.WriteString("| Argument | Type | Required | Description |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, p := range op.Parameters {
		required := "No"
		if p.Required {
			required = "Yes"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", p.Name, p.Type, required, p.Description)
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// Two forms share the generate_code_example name:
//
//	{generate_code_example(python)|/dev_fetch_api_key:post|example}
//	{generate_code_example|/dev_fetch_api_key:post|fixture(200)}
//
// The first renders a canonical usage sample in the requested language, the
// second inserts a stored example response.
func expandCodeExample(e *Expander, d *Directive) (string, error) {
	if len(d.PipeArgs) != 2 {
		return "", fmt.Errorf("%w: generate_code_example requires |endpoint|example or |endpoint|fixture(status)", ErrMalformedDirective)
	}
	ref := d.PipeArgs[0]

	if m := fixtureArgRegex.FindStringSubmatch(d.PipeArgs[1]); m != nil {
		if len(d.Args) != 0 {
			return "", fmt.Errorf("%w: fixture examples do not take a language", ErrMalformedDirective)
		}
		status, err := strconv.Atoi(m[1])
		if err != nil {
			return "", fmt.Errorf("%w: fixture status %q is not a valid HTTP status", ErrMalformedDirective, m[1])
		}
		body, err := e.fixtures.Fixture(ref, status)
		if err != nil {
			return "", err
		}
		return "``` json\n" + body + "\n```", nil
	}

	if d.PipeArgs[1] != "example" {
		return "", fmt.Errorf("%w: unknown example selector %q", ErrMalformedDirective, d.PipeArgs[1])
	}
	if len(d.Args) != 1 {
		return "", fmt.Errorf("%w: generate_code_example(lang) requires one language", ErrMalformedDirective)
	}
	lang := d.Args[0]

	renderer, ok := exampleRenderers[lang]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	op, err := e.spec.Operation(ref)
	if err != nil {
		return "", err
	}

	return renderer(op), nil
}
