package rag

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultLimit is the number of chunks Retrieve returns when no limit is given.
const DefaultLimit = 5

var tokenSplit = regexp.MustCompile(`[\s,.،]+`)

var stopWords = map[string]bool{
	// English
	"the": true, "and": true, "for": true, "with": true, "from": true, "are": true,
	"you": true, "what": true, "how": true, "can": true, "any": true, "about": true,
	"this": true, "that": true, "have": true, "has": true, "per": true, "into": true,
	// Arabic
	"في": true, "من": true, "على": true, "الى": true, "إلى": true, "عن": true,
	"مع": true, "هل": true, "ما": true, "هذا": true, "هذه": true, "التي": true,
	"الذي": true, "عايز": true, "ايه": true, "إيه": true, "فيه": true,
}

// categoryIndicators are query words hinting at a chunk category.
var categoryIndicators = map[string][]string{
	CategoryHotels:   {"hotel", "resort", "stay", "accommodation", "فندق", "فنادق", "منتجع", "اقامة", "إقامة"},
	CategoryTours:    {"tour", "excursion", "trip", "activit", "رحلة", "رحلات", "جولة", "جولات", "انشطة", "أنشطة"},
	CategoryVisa:     {"visa", "passport", "entry", "فيزا", "تأشيرة", "تاشيرة", "جواز"},
	CategoryIncludes: {"include", "included", "يشمل", "تشمل", "شامل", "مشمول"},
	CategoryExcludes: {"exclude", "not included", "extra", "لا يشمل", "لا تشمل", "غير شامل", "غير مشمول"},
}

// spellingFixes rewrites common Arabic spellings of destination names into
// destination codes. Longer forms come first.
var spellingFixes = []struct {
	from string
	to   string
}{
	{"شرم الشيخ", "sharm_el_sheikh"},
	{"شرم", "sharm_el_sheikh"},
	{"الغردقة", "hurghada"},
	{"الغردقه", "hurghada"},
	{"غردقة", "hurghada"},
	{"غردقه", "hurghada"},
	{"العين السخنة", "ain_sokhna"},
	{"العين السخنه", "ain_sokhna"},
	{"السخنة", "ain_sokhna"},
	{"السخنه", "ain_sokhna"},
	{"سهل حشيش", "sahl_hasheesh"},
	{"إسطنبول", "istanbul"},
	{"اسطنبول", "istanbul"},
	{"استنبول", "istanbul"},
	{"اسطمبول", "istanbul"},
	{"تركيا", "istanbul"},
	{"دهب", "dahab"},
	{"بالى", "bali"},
	{"بالي", "bali"},
	{"بيروت", "beirut"},
	{"لبنان", "beirut"},
}

// keywords lowercases, splits on whitespace, commas and periods, and drops
// short tokens and stop words.
func keywords(text string) []string {
	var out []string
	for _, tok := range tokenSplit.Split(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(tok) <= 2 || stopWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// score sums the independent signals for one chunk.
func score(c *Chunk, query string, queryKeywords []string, lang string) int {
	total := 0

	if strings.Contains(strings.ToLower(c.Title+" "+c.Text), query) {
		total += 10
	}

	if len(queryKeywords) > 0 {
		chunkKeywords := make(map[string]bool, len(c.keywords))
		for _, k := range c.keywords {
			chunkKeywords[k] = true
		}
		for _, k := range queryKeywords {
			if chunkKeywords[k] {
				total += 2
			}
		}
	}

	if c.Metadata != nil && c.Metadata.Category != "" {
		for _, word := range categoryIndicators[c.Metadata.Category] {
			if strings.Contains(query, word) {
				total += 5
				break
			}
		}
	}

	if lang != "" && c.Lang == lang {
		total += 3
	}

	if c.Destination != "" && mentionsDestination(query, c.Destination) {
		total += 4
	}
	return total
}

func mentionsDestination(query, destination string) bool {
	if strings.Contains(query, destination) || strings.Contains(query, strings.ReplaceAll(destination, "_", " ")) {
		return true
	}
	return destination == "istanbul" && strings.Contains(query, "turkey")
}

// Retrieve ranks all chunks against query. Zero-score chunks are dropped and
// ties keep load order.
func (s *Service) Retrieve(query string, opts RetrieveOptions) (*SearchResult, error) {
	if err := s.LoadAll(); err != nil {
		return nil, err
	}

	result := &SearchResult{Query: query, Chunks: []ScoredChunk{}}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return result, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	qk := keywords(q)
	for i := range s.chunks {
		if sc := score(&s.chunks[i], q, qk, opts.Lang); sc > 0 {
			result.Chunks = append(result.Chunks, ScoredChunk{Chunk: s.chunks[i], Score: sc})
		}
	}

	sort.SliceStable(result.Chunks, func(i, j int) bool {
		return result.Chunks[i].Score > result.Chunks[j].Score
	})
	if len(result.Chunks) > limit {
		result.Chunks = result.Chunks[:limit]
	}

	s.logger.Debug("rag", "retrieved chunks", map[string]interface{}{
		"query":   query,
		"lang":    opts.Lang,
		"results": len(result.Chunks),
	})
	return result, nil
}

// NormalizeQuery applies the spelling table to query.
func NormalizeQuery(query string) string {
	for _, fix := range spellingFixes {
		query = strings.ReplaceAll(query, fix.from, fix.to)
	}
	return query
}

// SmartSearch is Retrieve over the spelling-corrected query. The result keeps
// the caller's original query.
func (s *Service) SmartSearch(query string, opts RetrieveOptions) (*SearchResult, error) {
	result, err := s.Retrieve(NormalizeQuery(query), opts)
	if err != nil {
		return nil, err
	}
	result.Query = query
	return result, nil
}
