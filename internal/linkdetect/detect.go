// Package linkdetect scans message text against an ordered table of video
// platform patterns. Only the first matching platform is reported; later
// table entries are never evaluated once one hits.
package linkdetect

import (
	"regexp"
	"strings"
)

// Platform is one entry of the detection table.
type Platform struct {
	Tag     string
	Pattern *regexp.Regexp
}

// Match is a detected link with its canonical URL.
type Match struct {
	Platform string
	URL      string
}

// Table is evaluated in order. Adding a platform means appending one entry;
// tags must be unique.
var Table = []Platform{
	{"youtube", regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:shorts/|watch\?v=|embed/|v/|e/|user/|c/|channel/|playlist\?list=)?([a-zA-Z0-9_-]{11})|youtu\.be/([a-zA-Z0-9_-]{11}))`)},
	{"instagram", regexp.MustCompile(`(?:https?://)?(?:www\.)?instagram\.com/(?:p|tv|reel|share/reel)/([A-Za-z0-9_-]+)`)},
	{"tiktok", regexp.MustCompile(`(?:https?://)?(?:(?:www\.)?tiktok\.com/@[^/]+/video/\d+|vt\.tiktok\.com/[A-Za-z0-9_-]+)`)},
	{"twitter", regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:twitter|x)\.com/(?:i/web|\w+)/status/(\d+)`)},
	{"facebook", regexp.MustCompile(`(?:https?://)?(?:www\.)?facebook\.com/(?:watch/\?v=|\w+/videos/|reel/|story\.php\?story_fbid=)([0-9]+)`)},
	{"vimeo", regexp.MustCompile(`(?:https?://)?(?:www\.)?vimeo\.com/(\d+)`)},
	{"dailymotion", regexp.MustCompile(`(?:https?://)?(?:www\.)?dai(?:ly)?motion\.com/(?:video|shorts)/([a-zA-Z0-9]+)`)},
	{"pinterest", regexp.MustCompile(`(?:https?://)?(?:www\.)?pinterest\.com/pin/(\d+)`)},
	{"reddit", regexp.MustCompile(`(?:https?://)?(?:www\.)?reddit\.com/r/[^/]+/comments/([a-zA-Z0-9]+)`)},
	{"likee", regexp.MustCompile(`(?:https?://)?(?:www\.)?likee\.video/v/([a-zA-Z0-9]+)`)},
	{"kwai", regexp.MustCompile(`(?:https?://)?(?:www\.)?kwai\.com/video/([a-zA-Z0-9]+)`)},
	{"pornhub", regexp.MustCompile(`(?:https?://)?(?:www\.)?pornhub\.com/(?:view_video\.php\?viewkey=|video/)([a-zA-Z0-9_\-]+)`)},
	{"xvideos", regexp.MustCompile(`(?:https?://)?(?:www\.)?xvideos\.com/video(\d+)/?(?:[\w\-]*)`)},
	{"xnxx", regexp.MustCompile(`(?:https?://)?(?:www\.)?xnxx\.com/(?:video|player)/(?:[a-zA-Z0-9_\-/]+)`)},
	{"xhamster", regexp.MustCompile(`(?:https?://)?(?:www\.)?xhamster\.com/(?:videos)/(?:[a-zA-Z0-9_\-/]+)`)},
	{"redtube", regexp.MustCompile(`(?:https?://)?(?:www\.)?redtube\.com/(?:\w+)/(\d+)`)},
	{"youporn", regexp.MustCompile(`(?:https?://)?(?:www\.)?youporn\.com/(?:watch|video)/(\d+)`)},
}

// Detect returns the first platform in the table whose pattern matches the
// text, or nil if none does. A matched substring without a scheme gets an
// https prefix.
func Detect(text string) *Match {
	if text == "" {
		return nil
	}
	for _, platform := range Table {
		loc := platform.Pattern.FindString(text)
		if loc == "" {
			continue
		}
		url := loc
		if !strings.HasPrefix(url, "http") {
			url = "https://" + url
		}
		return &Match{Platform: platform.Tag, URL: url}
	}
	return nil
}
