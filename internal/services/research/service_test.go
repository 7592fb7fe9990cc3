package research

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestExtractRelatedQuestions(t *testing.T) {
	text := `Night differential pay is extra compensation for night work.

Related questions:
Q: Is night differential pay taxable?
Q: Who is entitled to night differential pay?
Not a question line
Q:
`
	questions := extractRelatedQuestions(text)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d: %v", len(questions), questions)
	}
	if questions[0] != "Is night differential pay taxable?" {
		t.Errorf("unexpected first question: %q", questions[0])
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.dol.gov/agencies/whd", "dol.gov"},
		{"https://example.com/page", "example.com"},
		{"not a url at all://", ""},
	}
	for _, tt := range tests {
		if got := domainOf(tt.url); got != tt.expected {
			t.Errorf("domainOf(%q) = %q, want %q", tt.url, got, tt.expected)
		}
	}
}

func TestSelectMainContentPrefersArticle(t *testing.T) {
	html := `<html><body>
		<nav>Menu links</nav>
		<article><h1>Real Content</h1><p>Body text.</p></article>
		<footer>Copyright</footer>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	pruneBoilerplate(doc)
	content := selectMainContent(doc)

	if !strings.Contains(content, "Real Content") {
		t.Errorf("expected article content, got %q", content)
	}
	if strings.Contains(content, "Menu links") {
		t.Errorf("navigation should have been pruned: %q", content)
	}
}

func TestPruneBoilerplateRemovesScripts(t *testing.T) {
	html := `<html><body><script>alert(1)</script><p>Kept.</p></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	pruneBoilerplate(doc)
	body, _ := doc.Find("body").Html()

	if strings.Contains(body, "alert") {
		t.Errorf("script content not removed: %q", body)
	}
	if !strings.Contains(body, "Kept.") {
		t.Errorf("paragraph content lost: %q", body)
	}
}
