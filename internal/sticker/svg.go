package sticker

import (
	"fmt"
	"strings"
)

const (
	bubbleWrapLen = 32 // hard wrap for the message body
	nameWrapLen   = 18 // word wrap for the name box
)

// BuildQuoteSVG composes a 512x512 WhatsApp-style chat bubble for the card:
// a centered name box, the quoted text in a bubble, the time in the corner
// and the sender's avatar if one was supplied.
func BuildQuoteSVG(card QuoteCard) string {
	wrapped := wrapBody(card.Text)
	bubbleHeight := 40 + len(wrapped)*38

	nameLines := wrapWords(card.Name, nameWrapLen)
	longest := 0
	for _, line := range nameLines {
		if len(line) > longest {
			longest = len(line)
		}
	}
	nameBoxWidth := max(120, min(340, 32+longest*18))
	nameBoxHeight := 20 + len(nameLines)*28
	nameBoxX := 256 - nameBoxWidth/2
	nameBoxY := 22

	var sb strings.Builder
	sb.WriteString(`<svg width='512' height='512' xmlns='http://www.w3.org/2000/svg' xmlns:xlink='http://www.w3.org/1999/xlink'>`)
	sb.WriteString(`<rect width='100%' height='100%' fill='#ece5dd'/>`)
	fmt.Fprintf(&sb, `<rect x='%d' y='%d' rx='14' ry='14' width='%d' height='%d' fill='#d1f0e2'/>`,
		nameBoxX, nameBoxY, nameBoxWidth, nameBoxHeight)
	for i, line := range nameLines {
		fmt.Fprintf(&sb, `<text x='256' y='%d' font-size='22' font-family='Arial' fill='#075e54' font-weight='bold' text-anchor='middle'>%s</text>`,
			nameBoxY+20+(i+1)*24, escape(line))
	}
	sb.WriteString(`<g>`)
	if card.AvatarDataURI != "" {
		sb.WriteString(`<clipPath id='clipCircle'><circle cx='70' cy='90' r='28'/></clipPath>`)
		fmt.Fprintf(&sb, `<image x='42' y='62' width='56' height='56' xlink:href='%s' clip-path='url(#clipCircle)'/>`, card.AvatarDataURI)
	}
	fmt.Fprintf(&sb, `<rect x='40' y='60' rx='28' ry='28' width='432' height='%d' fill='#dcf8c6'/>`, bubbleHeight)
	for i, line := range wrapped {
		fmt.Fprintf(&sb, `<text x='60' y='%d' font-size='30' font-family='Arial' fill='#222'>%s</text>`, 130+i*38, escape(line))
	}
	fmt.Fprintf(&sb, `<text x='420' y='%d' font-size='22' font-family='Arial' fill='#888'>%s</text>`, bubbleHeight+50, card.Time)
	sb.WriteString(`</g></svg>`)
	return sb.String()
}

// wrapBody splits the body into trimmed non-empty lines and hard-wraps each
// at bubbleWrapLen characters. An empty body yields a single space line so
// the bubble still renders.
func wrapBody(text string) []string {
	var wrapped []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		runes := []rune(line)
		for len(runes) > bubbleWrapLen {
			wrapped = append(wrapped, string(runes[:bubbleWrapLen]))
			runes = runes[bubbleWrapLen:]
		}
		if len(runes) > 0 {
			wrapped = append(wrapped, string(runes))
		}
	}
	if len(wrapped) == 0 {
		wrapped = []string{" "}
	}
	return wrapped
}

// wrapWords wraps text at word boundaries, keeping lines under maxLen.
func wrapWords(text string, maxLen int) []string {
	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if len(candidate) > maxLen && line != "" {
			lines = append(lines, line)
			line = word
		} else {
			line = candidate
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
