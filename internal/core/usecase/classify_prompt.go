package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/kirillkom/resume-router/internal/core/domain"
)

const (
	MaxPromptChars   = 3000
	TruncationMarker = "..."
)

// TruncateForPrompt cuts text to MaxPromptChars runes and marks the cut.
func TruncateForPrompt(text string) string {
	if utf8.RuneCountInString(text) <= MaxPromptChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxPromptChars]) + TruncationMarker
}

func buildClassificationPrompt(text string) string {
	return `Analyse this CV and classify it into exactly ONE of these 3 domains:
- IT (software, development, programming, data science, cybersecurity, infrastructure, etc.)
- HR (human resources, recruitment, training, personnel management, etc.)
- Multimedia (graphic design, video, audio, animation, digital marketing, visual communication, etc.)

CV to analyse:
` + text + `

Reply EXACTLY in this format: "Domain: [IT/HR/Multimedia]"
Do not give any further explanation.

Answer:`
}

var literalReplyPattern = regexp.MustCompile(`\bdomaine?\s?:\s?(it|hr|rh|multimedia|multimédia)\b`)

// Fallback keywords per domain, checked in domain.Domains order. The order is a tie-break only.
var domainKeywords = map[domain.Domain][]string{
	domain.DomainIT:         {"it", "informatique", "development", "développement", "programming", "programmation"},
	domain.DomainHR:         {"hr", "rh", "human resources", "ressources humaines", "recruitment", "recrutement"},
	domain.DomainMultimedia: {"multimedia", "multimédia", "design", "graphic", "graphique"},
}

// ParseDomainReply maps a free-form LLM reply to a domain without any I/O.
func ParseDomainReply(reply string) (domain.Domain, bool) {
	normalized := normalizeReply(reply)
	if normalized == "" {
		return "", false
	}

	if d, ok := literalDomain(normalized); ok {
		return d, true
	}

	words := " " + strings.Join(strings.FieldsFunc(normalized, isWordSeparator), " ") + " "
	for _, d := range domain.Domains {
		for _, keyword := range domainKeywords[d] {
			if strings.Contains(words, " "+keyword+" ") {
				return d, true
			}
		}
	}
	return "", false
}

// literalDomain checks the literal answer per label in domain.Domains order, so a reply
// naming several domains resolves the same way as the keyword fallback.
func literalDomain(normalized string) (domain.Domain, bool) {
	named := make(map[domain.Domain]bool)
	for _, m := range literalReplyPattern.FindAllStringSubmatch(normalized, -1) {
		if d, ok := domain.ParseDomainLabel(m[1]); ok {
			named[d] = true
		}
	}
	for _, d := range domain.Domains {
		if named[d] {
			return d, true
		}
	}
	return "", false
}

func normalizeReply(reply string) string {
	lowered := strings.ToLower(norm.NFC.String(reply))
	return strings.Join(strings.Fields(lowered), " ")
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
