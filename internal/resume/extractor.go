// Package resume turns résumé files into structured profiles using
// keyword and regular expression heuristics.
package resume

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	nameScanLines   = 5
	nameMaxTokens   = 4
	sectionMaxWords = 4
	minEntryLength  = 2
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
		regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\d{10}`),
	}

	experiencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s*(?:of\s*)?experience`),
		regexp.MustCompile(`(?i)experience[:\s]*(\d+)\+?\s*years?`),
		regexp.MustCompile(`(?i)(\d+)\s*years?\s*(?:of\s*)?professional\s*experience`),
	}
	yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	educationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:bachelor|b\.tech|btech|b\.e\.|b\.s\.)[^\n]{0,50}`),
		regexp.MustCompile(`(?i)\b(?:master|m\.tech|mtech|m\.e\.|m\.s\.|mba)[^\n]{0,50}`),
		regexp.MustCompile(`(?i)\b(?:phd|ph\.d\.?|doctorate)[^\n]{0,50}`),
		regexp.MustCompile(`(?i)\b(?:diploma|certification|certificate)[^\n]{0,50}`),
	}

	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:\bat|@)[ \t]+([A-Za-z0-9 \t&.,]+?)(?:[ \t]*[-|]|[ \t]*$)`),
		regexp.MustCompile(`(?im)\b(?:company|employer)[: \t]+([A-Za-z0-9 \t&.,]+?)[ \t]*$`),
	}

	nameStopWords = regexp.MustCompile(`(?i)\b(?:resume|cv|curriculum|vitae)\b`)

	skillsHeader   = regexp.MustCompile(`(?im)^[ \t]*(?:technical skills|core competencies|skills)\b[ \t]*:?`)
	sectionHeader  = regexp.MustCompile(`(?i)^(?:experience|work experience|professional experience|employment|education|projects|certifications|summary|objective|languages|interests)\b`)
	skillSeparator = regexp.MustCompile(`[,;|•/\n]`)
)

// Option configures an Extractor.
type Option func(*Extractor)

func WithVocabulary(v *Vocabulary) Option {
	return func(e *Extractor) {
		if v != nil {
			e.vocabulary = v
		}
	}
}

func WithGazetteer(g Gazetteer) Option {
	return func(e *Extractor) {
		if g != nil {
			e.gazetteer = g
		}
	}
}

func WithTextExtractor(t TextExtractor) Option {
	return func(e *Extractor) {
		if t != nil {
			e.text = t
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Extractor builds profiles from résumé files or raw text.
type Extractor struct {
	vocabulary *Vocabulary
	gazetteer  Gazetteer
	text       TextExtractor
	logger     *zap.Logger
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		vocabulary: DefaultVocabulary(),
		gazetteer:  NewCityGazetteer(DefaultCities()),
		text:       FileTextExtractor{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFile reads the résumé at path and parses it. Unknown extensions fail
// with ErrUnsupportedFormat, unreadable documents with ErrExtraction.
func (e *Extractor) ExtractFile(path string) (*Profile, error) {
	text, err := e.text.Extract(path)
	if err != nil {
		return nil, err
	}

	profile := e.ExtractText(text)

	e.logger.Debug("resume parsed",
		zap.String("path", path),
		zap.Int("skills", len(profile.Skills)),
		zap.Int("vocabulary_size", e.vocabulary.Len()),
		zap.Float64("experience_years", profile.Years()),
		zap.Strings("locations", profile.PreferredLocations),
	)

	return profile, nil
}

// ExtractText parses already extracted résumé text. It never fails: fields
// that cannot be found are left empty.
func (e *Extractor) ExtractText(text string) *Profile {
	return &Profile{
		Name:               extractName(text),
		Email:              emailPattern.FindString(text),
		Phone:              extractPhone(text),
		Skills:             e.extractSkills(text),
		ExperienceYears:    extractExperienceYears(text),
		Education:          extractEducation(text),
		WorkHistory:        extractWorkHistory(text),
		PreferredLocations: e.gazetteer.Locate(text),
		RawText:            text,
	}
}

func extractName(text string) string {
	scanned := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if scanned == nameScanLines {
			break
		}
		scanned++

		if len(strings.Fields(line)) > nameMaxTokens {
			continue
		}
		if strings.ContainsAny(line, "0123456789@") {
			continue
		}
		if nameStopWords.MatchString(line) {
			continue
		}
		return line
	}
	return ""
}

func extractPhone(text string) string {
	for _, p := range phonePatterns {
		if m := p.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func (e *Extractor) extractSkills(text string) []string {
	skills := e.vocabulary.Find(text)

	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		seen[strings.ToLower(s)] = struct{}{}
	}

	title := cases.Title(language.English)
	for _, token := range skillSection(text) {
		key := strings.ToLower(token)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if canonical, ok := e.vocabulary.Canonical(token); ok {
			skills = append(skills, canonical)
			continue
		}
		skills = append(skills, title.String(token))
	}

	return skills
}

// skillSection returns the entries listed under a skills header. The section
// ends at a blank line or at the next well-known section header.
func skillSection(text string) []string {
	loc := skillsHeader.FindStringIndex(text)
	if loc == nil {
		return nil
	}

	var lines []string
	for i, line := range strings.Split(text[loc[1]:], "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if i == 0 {
				continue
			}
			break
		}
		if i > 0 && sectionHeader.MatchString(trimmed) {
			break
		}
		lines = append(lines, trimmed)
	}

	var tokens []string
	for _, piece := range skillSeparator.Split(strings.Join(lines, "\n"), -1) {
		piece = strings.Trim(piece, " \t-*·.:()")
		if len([]rune(piece)) <= minEntryLength {
			continue
		}
		if len(strings.Fields(piece)) > sectionMaxWords {
			continue
		}
		if !strings.ContainsFunc(piece, isLetter) {
			continue
		}
		tokens = append(tokens, strings.Join(strings.Fields(piece), " "))
	}
	return tokens
}

func extractExperienceYears(text string) *float64 {
	for _, p := range experiencePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if years, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &years
		}
	}

	found := yearPattern.FindAllString(text, -1)
	if len(found) < 2 {
		return nil
	}

	lo, hi := 0, 0
	for i, s := range found {
		y, _ := strconv.Atoi(s)
		if i == 0 || y < lo {
			lo = y
		}
		if i == 0 || y > hi {
			hi = y
		}
	}

	estimate := float64(hi - lo)
	if estimate <= 0 || estimate >= 50 {
		return nil
	}
	return &estimate
}

func extractEducation(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range educationPatterns {
		for _, m := range p.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if _, ok := seen[strings.ToLower(m)]; ok {
				continue
			}
			seen[strings.ToLower(m)] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

func extractWorkHistory(text string) []WorkEntry {
	var out []WorkEntry
	seen := make(map[string]struct{})
	for _, p := range companyPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			company := strings.Trim(m[1], " \t.,")
			if len(company) <= minEntryLength {
				continue
			}
			key := strings.ToLower(company)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, WorkEntry{Company: company})
		}
	}
	return out
}

func isLetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r > 127
}
