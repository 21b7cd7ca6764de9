package catalog

import (
	"net/url"
	"strings"
)

// SharePlatform is a target for a share link.
type SharePlatform string

// Supported share targets.
const (
	ShareWhatsApp SharePlatform = "whatsapp"
	ShareTwitter  SharePlatform = "twitter"
	ShareEmail    SharePlatform = "email"
	ShareCopy     SharePlatform = "copy"
)

// StoryURL is the public link for a story under baseURL.
func StoryURL(baseURL, id string) string {
	u, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		return "?page=details&id=" + url.QueryEscape(id)
	}
	q := u.Query()
	q.Set("page", "details")
	q.Set("id", id)
	u.RawQuery = q.Encode()
	return u.String()
}

// ShareLinks builds one link per platform for s.
func ShareLinks(baseURL string, s Story) map[SharePlatform]string {
	link := StoryURL(baseURL, s.ID)
	text := "اقرأ قصة \"" + s.Title + "\" للكاتب " + s.Author
	esc := func(v string) string { return strings.ReplaceAll(url.QueryEscape(v), "+", "%20") }
	return map[SharePlatform]string{
		ShareWhatsApp: "https://wa.me/?text=" + esc(text+" "+link),
		ShareTwitter:  "https://twitter.com/intent/tweet?text=" + esc(text) + "&url=" + esc(link),
		ShareEmail:    "mailto:?subject=" + esc(s.Title) + "&body=" + esc(text+"\n"+link),
		ShareCopy:     link,
	}
}
