package page

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	_ "embed"

	"github.com/stretchr/testify/require"
)

//go:embed resume_page_test.html
var resumePageTest []byte

func parseFixture(t testing.TB) *Page {
	p, err := Parse(bytes.NewBuffer(resumePageTest))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestText(t *testing.T) {
	p := parseFixture(t)

	name, ok := p.Text("h1")
	require.True(t, ok)
	require.Equal(t, "Vernell Mangum", name)

	counter, ok := p.Text("h3")
	require.True(t, ok)
	require.Equal(t, "Loading visitors...", counter)

	_, ok = p.Text("h4")
	require.False(t, ok)
}

func TestSetText(t *testing.T) {
	p := parseFixture(t)

	err := p.SetText("h3", "Visitor Count: 42")
	if err != nil {
		t.Fatal(err)
	}

	raw, ok := p.RawText("h3")
	require.True(t, ok)
	require.Equal(t, "Visitor Count: 42", raw)

	// only the first match changes
	sections, ok := p.Text("section h3")
	require.True(t, ok)
	require.Equal(t, "Experience", sections)

	rendered := p.String()
	require.Contains(t, rendered, "<h3>Visitor Count: 42</h3>")
	require.Contains(t, rendered, "<h3>Experience</h3>")
	require.NotContains(t, rendered, "Loading visitors...")
}

func TestSetTextEscapes(t *testing.T) {
	p := parseFixture(t)

	err := p.SetText("h3", "<b>1</b>")
	if err != nil {
		t.Fatal(err)
	}
	require.Contains(t, p.String(), "&lt;b&gt;1&lt;/b&gt;")
	require.Equal(t, 0, p.doc.Find("h3 b").Length())
}

func TestSetTextNoMatch(t *testing.T) {
	p := parseFixture(t)
	before := p.String()

	err := p.SetText("#visitor-count", "Visitor Count: 1")
	require.True(t, errors.Is(err, ErrNoMatch))
	require.Equal(t, before, p.String())
}

func TestClone(t *testing.T) {
	p := parseFixture(t)
	clone := p.Clone()

	err := clone.SetText("h3", "Visitor Count: 7")
	if err != nil {
		t.Fatal(err)
	}

	original, _ := p.Text("h3")
	require.Equal(t, "Loading visitors...", original)
	cloned, _ := clone.Text("h3")
	require.Equal(t, "Visitor Count: 7", cloned)
}

func TestRenderRoundTrip(t *testing.T) {
	p := parseFixture(t)

	var out bytes.Buffer
	err := p.Render(&out)
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, strings.HasPrefix(out.String(), "<!DOCTYPE html>"))

	reparsed, err := Parse(&out)
	if err != nil {
		t.Fatal(err)
	}
	name, _ := reparsed.Text("h1")
	require.Equal(t, "Vernell Mangum", name)
}
