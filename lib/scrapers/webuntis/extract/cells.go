package extract

import (
	"regexp"
	"strings"
	"untis-scraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// cellTexts returns the cleaned text of every td in the row, or nil when
// the row has fewer than minimum cells.
func cellTexts(row *goquery.Selection, minimum int) []string {
	cells := row.Find("td")
	if cells.Length() < minimum {
		return nil
	}
	texts := make([]string, cells.Length())
	cells.Each(func(i int, cell *goquery.Selection) {
		texts[i] = htmlutil.CleanText(cell)
	})
	return texts
}

var abbreviationRegex = regexp.MustCompile(`^[A-ZÄÖÜ]{1,4}$`)

// subjectCode returns text when it looks like a subject abbreviation ("M",
// "BIO", ...).
func subjectCode(text string) string {
	text = strings.TrimSpace(text)
	if abbreviationRegex.MatchString(text) {
		return text
	}
	return ""
}
