// Package page holds an html document in memory so it can be queried,
// updated and written back out.
package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var ErrNoMatch = errors.New("no element matches selector")

type Page struct {
	doc *goquery.Document
}

func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{doc: doc}, nil
}

func Load(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func (p *Page) first(selector string) (*goquery.Selection, error) {
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return sel, nil
}

// SetText replaces the children of the first element matching `selector`
// with a single text node, the text is escaped when rendered.
func (p *Page) SetText(selector, text string) error {
	sel, err := p.first(selector)
	if err != nil {
		return err
	}
	sel.SetText(text)
	return nil
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// Text returns the whitespace-normalized text of the first element matching `selector`.
func (p *Page) Text(selector string) (string, bool) {
	sel, err := p.first(selector)
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(sel.Text())
	return innerWhitespace.ReplaceAllString(text, " "), true
}

// RawText returns the exact text content of the first element matching `selector`.
func (p *Page) RawText(selector string) (string, bool) {
	sel, err := p.first(selector)
	if err != nil {
		return "", false
	}
	return sel.Text(), true
}

func (p *Page) Render(w io.Writer) error {
	for _, n := range p.doc.Selection.Nodes {
		err := html.Render(w, n)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) String() string {
	var buff bytes.Buffer
	err := p.Render(&buff)
	if err != nil {
		return ""
	}
	return buff.String()
}

// Clone returns a deep copy of the page, mutating the copy leaves the original untouched.
func (p *Page) Clone() *Page {
	return &Page{doc: goquery.NewDocumentFromNode(p.doc.Selection.Clone().Nodes[0])}
}
