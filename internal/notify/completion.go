package notify

import (
	"fmt"
	"html"
	"strings"

	"bidsmart-backend/internal/models"
)

// CompletionEmail tells the homeowner their bids are ready to compare.
func CompletionEmail(p models.Project, bidCount int, appBaseURL string) Email {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "your project"
	}
	link := strings.TrimRight(appBaseURL, "/") + "/projects/" + p.ID.String()

	to := []string{}
	if p.NotificationEmail != nil {
		to = append(to, *p.NotificationEmail)
	}

	return Email{
		To:      to,
		Subject: fmt.Sprintf("Your %d HVAC bids are ready to compare", bidCount),
		HTML: fmt.Sprintf(`<p>Good news! We finished analyzing the bids for <strong>%s</strong>.</p>
<p>%d contractor bids are ready for a side-by-side comparison.</p>
<p><a href="%s">Compare your bids</a></p>`, html.EscapeString(name), bidCount, html.EscapeString(link)),
		Text: fmt.Sprintf("We finished analyzing the bids for %s. %d bids are ready to compare: %s", name, bidCount, link),
		Tags: map[string]string{"category": "analysis_complete"},
	}
}
