// Package mjcf reads MuJoCo-style XML scene documents as a flat stream of
// element events.
//
// The reader does not check that end tags match start tags; building the
// node tree, and rejecting a mismatched close, is the caller's job.
package mjcf

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html/charset"

	"github.com/Faultbox/mjscene/pkg/encoding"
)

// ErrSyntax wraps malformed XML reported by the underlying decoder.
var ErrSyntax = errors.New("malformed scene document")

// EventKind distinguishes element events.
type EventKind int

const (
	StartElement EventKind = iota
	EndElement
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case StartElement:
		return "start"
	case EndElement:
		return "end"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Attr is one attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Event is a start or end element. Self-closing elements produce a start
// event immediately followed by a matching end event.
type Event struct {
	Kind  EventKind
	Name  string
	Attrs []Attr // start events only
	Line  int
}

// Attr returns the value of the named attribute.
func (e Event) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Reader yields element events from a document.
type Reader struct {
	dec *xml.Decoder
}

// NewReader creates a Reader. UTF-8 and BOM-marked UTF-16 input are read
// directly; other encodings must be declared in the XML prolog.
func NewReader(r io.Reader) *Reader {
	dec := xml.NewDecoder(encoding.NewUTF8Reader(r))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charsetReader
	return &Reader{dec: dec}
}

// charsetReader defers to x/net's label table, except for UTF-16: such
// input was already transcoded from its BOM by encoding.NewUTF8Reader.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	if encoding.IsUTF16Label(label) {
		return input, nil
	}
	return charset.NewReaderLabel(label, input)
}

// Next returns the next element event, or io.EOF at the end of input.
// Character data, comments, processing instructions and directives are
// skipped.
func (r *Reader) Next() (Event, error) {
	for {
		tok, err := r.dec.RawToken()
		if err != nil {
			if err == io.EOF {
				return Event{}, io.EOF
			}
			return Event{}, r.wrap(err)
		}

		line, _ := r.dec.InputPos()
		switch t := tok.(type) {
		case xml.StartElement:
			ev := Event{Kind: StartElement, Name: t.Name.Local, Line: line}
			if len(t.Attr) > 0 {
				ev.Attrs = make([]Attr, 0, len(t.Attr))
				for _, a := range t.Attr {
					ev.Attrs = append(ev.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
				}
			}
			return ev, nil
		case xml.EndElement:
			return Event{Kind: EndElement, Name: t.Name.Local, Line: line}, nil
		}
	}
}

func (r *Reader) wrap(err error) error {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return fmt.Errorf("%w: line %d: %s", ErrSyntax, se.Line, se.Msg)
	}
	line, _ := r.dec.InputPos()
	return fmt.Errorf("%w: line %d: %v", ErrSyntax, line, err)
}

// ReadAll reads every event from r.
func ReadAll(r io.Reader) ([]Event, error) {
	rd := NewReader(r)
	var events []Event
	for {
		ev, err := rd.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}

// ReadFile reads every event from the named file.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(bufio.NewReader(f))
}
