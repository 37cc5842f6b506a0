package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/logger"
)

// Segment is one piece of an annotated text. Kind is SegmentText or
// SegmentTerm; Term is set only for term segments.
type Segment struct {
	Kind string
	Text string
	Term *entities.GlossaryTerm
}

const (
	SegmentText = "text"
	SegmentTerm = "term"
)

// GlossaryService detects financial terms inside assistant replies so the
// client can attach inline definitions.
type GlossaryService interface {
	// ListTerms returns every glossary term.
	ListTerms(ctx context.Context) ([]*entities.GlossaryTerm, error)

	// ListTermsByCategory returns the terms in one category.
	ListTermsByCategory(ctx context.Context, category string) ([]*entities.GlossaryTerm, error)

	// DetectTerms returns the glossary terms present in the text as whole
	// words, in dictionary order. A failing term store degrades to an empty
	// result instead of an error.
	DetectTerms(ctx context.Context, text string) []*entities.GlossaryTerm

	// AnnotateText splits the text into plain and term segments. Longer terms
	// win overlaps; concatenating the segments reproduces the input exactly.
	AnnotateText(ctx context.Context, text string) []Segment

	// CreateTerm, UpdateTerm and DeleteTerm are the admin operations; each
	// write drops the term cache.
	CreateTerm(ctx context.Context, term *entities.GlossaryTerm) error
	UpdateTerm(ctx context.Context, term *entities.GlossaryTerm) error
	DeleteTerm(ctx context.Context, id int64) error
	GetTerm(ctx context.Context, id int64) (*entities.GlossaryTerm, error)
}

type glossaryServiceImpl struct {
	glossaryRepo repositories.GlossaryRepository
	clock        Clock
	cacheTTL     time.Duration
	logger       logger.Logger

	mu       sync.Mutex
	cached   []*entities.GlossaryTerm
	cachedAt time.Time
}

// NewGlossaryService creates the glossary service with the system clock.
func NewGlossaryService(glossaryRepo repositories.GlossaryRepository, cfg *config.GlossaryConfig, log logger.Logger) GlossaryService {
	return NewGlossaryServiceWithClock(glossaryRepo, cfg, log, systemClock{})
}

// NewGlossaryServiceWithClock creates the glossary service with an injected clock.
func NewGlossaryServiceWithClock(glossaryRepo repositories.GlossaryRepository, cfg *config.GlossaryConfig, log logger.Logger, clock Clock) GlossaryService {
	return &glossaryServiceImpl{
		glossaryRepo: glossaryRepo,
		clock:        clock,
		cacheTTL:     cfg.TermCacheTTL,
		logger:       log,
	}
}

func (s *glossaryServiceImpl) ListTerms(ctx context.Context) ([]*entities.GlossaryTerm, error) {
	return s.glossaryRepo.ListAll(ctx)
}

func (s *glossaryServiceImpl) ListTermsByCategory(ctx context.Context, category string) ([]*entities.GlossaryTerm, error) {
	return s.glossaryRepo.ListByCategory(ctx, category)
}

// cachedTerms returns the term list, refreshing it when older than the TTL.
// On refresh failure a warm cache is served stale; a cold cache yields nil so
// detection degrades to no annotations.
func (s *glossaryServiceImpl) cachedTerms(ctx context.Context) []*entities.GlossaryTerm {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.cached != nil && now.Sub(s.cachedAt) < s.cacheTTL {
		return s.cached
	}

	terms, err := s.glossaryRepo.ListAll(ctx)
	if err != nil {
		if s.cached != nil {
			s.logger.WithField("error", err.Error()).Warn("glossary refresh failed, serving stale terms")
			return s.cached
		}
		s.logger.WithField("error", err.Error()).Warn("glossary unavailable, skipping term detection")
		return nil
	}

	s.cached = terms
	s.cachedAt = now
	return s.cached
}

func (s *glossaryServiceImpl) invalidateCache() {
	s.mu.Lock()
	s.cached = nil
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}

func (s *glossaryServiceImpl) DetectTerms(ctx context.Context, text string) []*entities.GlossaryTerm {
	terms := s.cachedTerms(ctx)
	if len(terms) == 0 || text == "" {
		return nil
	}

	detected := make([]*entities.GlossaryTerm, 0)
	for _, term := range terms {
		if containsWholeWord(text, term.Term) {
			detected = append(detected, term)
		}
	}

	sort.SliceStable(detected, func(i, j int) bool {
		return strings.ToLower(detected[i].Term) < strings.ToLower(detected[j].Term)
	})
	return detected
}

// termMatch is one accepted occurrence inside the text.
type termMatch struct {
	start int
	end   int
	term  *entities.GlossaryTerm
}

func (s *glossaryServiceImpl) AnnotateText(ctx context.Context, text string) []Segment {
	if text == "" {
		return nil
	}

	terms := s.cachedTerms(ctx)
	if len(terms) == 0 {
		return []Segment{{Kind: SegmentText, Text: text}}
	}

	// Longer terms claim their spans first so "dividend yield" beats
	// "dividend"; later candidates overlapping a claimed span are dropped.
	ordered := make([]*entities.GlossaryTerm, len(terms))
	copy(ordered, terms)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Term) > len(ordered[j].Term)
	})

	var matches []termMatch
	for _, term := range ordered {
		for _, sp := range wholeWordOccurrences(text, term.Term) {
			candidate := termMatch{start: sp.start, end: sp.end, term: term}
			if overlapsAny(matches, candidate) {
				continue
			}
			matches = append(matches, candidate)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	segments := make([]Segment, 0, len(matches)*2+1)
	cursor := 0
	for _, m := range matches {
		if m.start > cursor {
			segments = append(segments, Segment{Kind: SegmentText, Text: text[cursor:m.start]})
		}
		segments = append(segments, Segment{Kind: SegmentTerm, Text: text[m.start:m.end], Term: m.term})
		cursor = m.end
	}
	if cursor < len(text) {
		segments = append(segments, Segment{Kind: SegmentText, Text: text[cursor:]})
	}
	return segments
}

func (s *glossaryServiceImpl) CreateTerm(ctx context.Context, term *entities.GlossaryTerm) error {
	if err := s.glossaryRepo.Create(ctx, term); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *glossaryServiceImpl) UpdateTerm(ctx context.Context, term *entities.GlossaryTerm) error {
	if err := s.glossaryRepo.Update(ctx, term); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *glossaryServiceImpl) DeleteTerm(ctx context.Context, id int64) error {
	if err := s.glossaryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *glossaryServiceImpl) GetTerm(ctx context.Context, id int64) (*entities.GlossaryTerm, error) {
	return s.glossaryRepo.GetByID(ctx, id)
}

// span is a half-open [start, end) byte range into the searched text.
type span struct {
	start int
	end   int
}

// containsWholeWord reports whether needle occurs in haystack bounded by
// non-alphanumeric runes, so "per" never matches inside "super".
func containsWholeWord(haystack, needle string) bool {
	return len(wholeWordOccurrences(haystack, needle)) > 0
}

// wholeWordOccurrences returns the byte spans of every case-insensitive
// whole-word occurrence of needle in haystack. Matching folds rune by rune
// over the original bytes, so the spans stay valid slice bounds even when a
// rune's lowercase form has a different UTF-8 length.
func wholeWordOccurrences(haystack, needle string) []span {
	if needle == "" {
		return nil
	}
	var spans []span
	for i := 0; i < len(haystack); {
		_, size := utf8.DecodeRuneInString(haystack[i:])
		if n := foldedPrefixLen(haystack[i:], needle); n >= 0 {
			end := i + n
			if boundaryBefore(haystack, i) && boundaryAfter(haystack, end) {
				spans = append(spans, span{start: i, end: end})
			}
		}
		i += size
	}
	return spans
}

// foldedPrefixLen returns the byte length of the case-insensitive match of
// needle at the start of s, or -1 when s does not start with needle.
func foldedPrefixLen(s, needle string) int {
	n := 0
	for _, nr := range needle {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || !runesFoldEqual(r, nr) {
			return -1
		}
		n += size
	}
	return n
}

func runesFoldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return !isWordRune(r)
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func overlapsAny(matches []termMatch, candidate termMatch) bool {
	for _, m := range matches {
		if candidate.start < m.end && m.start < candidate.end {
			return true
		}
	}
	return false
}
