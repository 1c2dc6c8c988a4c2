package apidocs

// VERSION is the current release of the apidocs toolchain, embedded in
// generated file headers.
const VERSION = "0.1.0"

// Document represents a parsed API documentation page as an ordered
// sequence of segments, plus any required metadata about the source file.
//
// A Document is immutable once parsed. Re-serializing its literal segments
// reproduces the original literal text byte for byte.
type Document struct {
	// Metadata about the source file
	Metadata MetaData
	// Document-level pragmas controlling rendering options
	Pragmas Pragma
	// The ordered page content
	Segments []Segment
}

type MetaData struct {
	// The source file path
	Source string
	// The absolute source file path, when known
	AbsSource string
}

type PragmaKey string

const (
	PragmaOutput PragmaKey = "output"
	PragmaFormat PragmaKey = "format"
)

type Pragma struct {
	// The rendered page output path, relative to the source page
	Output string
	// The rendered page format ("markdown" or "html")
	Format string
}

// SegmentKind discriminates the variants of a Segment.
type SegmentKind int

const (
	// KindLiteral is plain page text, passed through untouched.
	KindLiteral SegmentKind = iota
	// KindDirective is a single {name...} macro invocation.
	KindDirective
	// KindTabBlock is a {start_tabs}...{end_tabs} region.
	KindTabBlock
)

// Segment is one element of a parsed page. Exactly one of Literal,
// Directive or Tabs is meaningful, selected by Kind.
type Segment struct {
	Kind      SegmentKind
	Literal   string
	Directive *Directive
	Tabs      *TabBlock
}

// Position locates a directive in the page source. Lines are 1-indexed.
type Position struct {
	Line int
	Col  int
}

// Directive is a parsed macro invocation such as
//
//	{generate_code_example(python)|/dev_fetch_api_key:post|example}
//
// Name is the identifier before any arguments, Args the parenthesized
// positional arguments, and PipeArgs the ordered arguments after each "|".
type Directive struct {
	Name     string
	Args     []string
	PipeArgs []string
	// Raw is the directive text exactly as written, for diagnostics
	Raw string
	Pos Position
}

// Tab is one labeled alternative inside a TabBlock.
type Tab struct {
	Label    string
	Segments []Segment
}

// TabBlock is a presentational grouping of alternative content under
// labeled tabs. Tab order matches source order.
type TabBlock struct {
	Tabs []Tab
	Pos  Position
}
