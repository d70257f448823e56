package extract

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
	"untis-scraper/lib/htmlutil"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/textutil"
	"untis-scraper/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

const minHomeworkCells = 3

var completedKeywords = []string{"erledigt", "done", "completed"}

// columns: subject, title, due date, description (optional)
func parseHomeworkRow(ctx context.Context, row *goquery.Selection) (records.Homework, bool) {
	cells := cellTexts(row, minHomeworkCells)
	if cells == nil {
		return records.Homework{}, false
	}

	due, ok := cellDate(cells[2])
	if !ok {
		return records.Homework{}, false
	}

	homework := records.Homework{
		ID:           records.NewID(),
		Subject:      cells[0],
		SubjectCode:  subjectCode(cells[0]),
		AssignedDate: timezone.Now(),
		DueDate:      due,
		Title:        cells[1],
		Description:  cells[1],
		Attachments:  attachments(ctx, row),
		Priority:     records.PriorityNormal,
	}
	if len(cells) > 3 && cells[3] != "" {
		homework.Description = cells[3]
	}

	text := textutil.Normalize(htmlutil.CleanText(row))
	homework.IsCompleted = isCompleted(row, text)

	switch {
	case textutil.ContainsAny(text, "dringend", "urgent"):
		homework.Priority = records.PriorityUrgent
	case textutil.ContainsAny(text, "wichtig", "important"):
		homework.Priority = records.PriorityHigh
	}

	return homework, true
}

func isCompleted(row *goquery.Selection, text string) bool {
	if row.Find("input[type=checkbox][checked]").Length() > 0 {
		return true
	}
	class := strings.ToLower(row.AttrOr("class", ""))
	if textutil.ContainsAny(class, completedKeywords...) {
		return true
	}
	if textutil.ContainsAny(text, "nicht erledigt", "unerledigt", "not done", "not completed") {
		return false
	}
	return textutil.ContainsAny(text, completedKeywords...)
}

func attachments(ctx context.Context, row *goquery.Selection) []records.Attachment {
	out := []records.Attachment{}
	for _, anchor := range htmlutil.GetAnchors(ctx, row.Find("a[href]")) {
		href := strings.TrimSpace(anchor.Href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			continue
		}
		name := anchor.Name
		if name == "" {
			name = path.Base(href)
		}
		out = append(out, records.Attachment{
			ID:       records.NewID(),
			Name:     name,
			URL:      href,
			MimeType: mimeType(href),
		})
	}
	return out
}

func mimeType(href string) string {
	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	ext := path.Ext(link.Path)
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(strings.ToLower(ext))
}

func homeworkFallback(keyword string) records.Homework {
	now := timezone.Now()
	return records.Homework{
		ID:           records.NewID(),
		Subject:      "Unknown",
		AssignedDate: now,
		DueDate:      now,
		Title:        fmt.Sprintf("Homework found: %s", keyword),
		Description:  fmt.Sprintf("Found homework indicator: %s", keyword),
		Attachments:  []records.Attachment{},
		Priority:     records.PriorityNormal,
		Placeholder:  true,
	}
}
