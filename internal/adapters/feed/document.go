package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// Document is the upstream ranking feed:
//
//	<uranai>
//	  <date>5月3日</date>
//	  <ranking><item><id>3</id></item>...</ranking>
//	</uranai>
type Document struct {
	XMLName  xml.Name `xml:"uranai"`
	DateText *string  `xml:"date"`
	Items    []Item   `xml:"ranking>item"`
}

// Item is one ranking entry; document order is rank order.
type Item struct {
	ID string `xml:"id"`
}

// NewDocument builds a document for the given date text and item ids.
func NewDocument(date string, ids []int) *Document {
	d := &Document{DateText: &date, Items: make([]Item, len(ids))}
	for i, id := range ids {
		d.Items[i] = Item{ID: strconv.Itoa(id)}
	}
	return d
}

// Date returns the raw date text and whether the element was present.
func (d *Document) Date() (string, bool) {
	if d == nil || d.DateText == nil {
		return "", false
	}
	return *d.DateText, true
}

// ItemIDs returns the item identifiers in document order.
func (d *Document) ItemIDs() ([]int, error) {
	if d == nil {
		return nil, nil
	}
	ids := make([]int, 0, len(d.Items))
	for i, it := range d.Items {
		id, err := strconv.Atoi(strings.TrimSpace(it.ID))
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %q", ErrInvalidItem, i, it.ID)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// WriteTo writes the document as UTF-8 XML with a declaration.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, xml.Header)
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(append(body, '\n'))
	return int64(n + m), err
}

// Parse decodes a document, honoring the encoding named in the XML declaration.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return &doc, nil
}
