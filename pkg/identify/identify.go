// Package identify turns a card photo into a catalog card: the identifier is
// read from the bottom-left text first and the artwork is matched visually
// when that fails.
package identify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"riftscan/pkg/cardid"
	"riftscan/pkg/catalog"
	"riftscan/pkg/ocr"
	"riftscan/pkg/vision"
)

// Method records how a scan was resolved.
type Method string

const (
	MethodText   Method = "text"
	MethodVisual Method = "visual"
	MethodManual Method = "manual"
	MethodNone   Method = "none"
)

// Result describes one identification. Identifier and Match may be set even
// when the target-language card is missing. TextIdentifier is what the
// bottom-left text resolved to, kept when the artwork decided the card.
type Result struct {
	Method         Method              `json:"method"`
	Identifier     string              `json:"identifier,omitempty"`
	TextIdentifier string              `json:"text_identifier,omitempty"`
	Language       string              `json:"language,omitempty"`
	Match          *vision.MatchResult `json:"match,omitempty"`
	Card           *catalog.Entry      `json:"card,omitempty"`
	Lines          []cardid.TextLine   `json:"-"`
}

type Service struct {
	Recognizer ocr.Recognizer
	Resolver   *cardid.Resolver
	Matcher    *vision.Matcher
	Library    *catalog.Library

	// SourceLanguage is the catalog photos are matched against visually.
	SourceLanguage string
	// TargetLanguage is used when a call does not name one.
	TargetLanguage string
	Verbose        bool
}

func NewService(rec ocr.Recognizer, lib *catalog.Library, source, target string) *Service {
	return &Service{
		Recognizer:     rec,
		Resolver:       cardid.NewResolver(),
		Matcher:        vision.NewMatcher(0),
		Library:        lib,
		SourceLanguage: source,
		TargetLanguage: target,
	}
}

func (s *Service) logV(format string, args ...any) {
	if s.Verbose {
		log.Printf(format, args...)
	}
}

func (s *Service) target(lang string) string {
	if lang == "" {
		return s.TargetLanguage
	}
	return lang
}

// Lookup finds id in the catalog of lang, or of the default target language.
func (s *Service) Lookup(lang, id string) (catalog.Entry, error) {
	d, err := s.Library.Language(s.target(lang))
	if err != nil {
		return catalog.Entry{}, err
	}
	return d.Lookup(id)
}

// Identify resolves img to a card in lang. Recognizer failures are logged and
// treated as no text. ErrNoIdentification is returned when neither the text
// nor the artwork leads to a card in the target catalog.
func (s *Service) Identify(ctx context.Context, img vision.Image, lang string) (Result, error) {
	lang = s.target(lang)
	if _, err := s.Library.Language(lang); err != nil {
		return Result{Method: MethodNone}, err
	}
	if img.Empty() {
		return Result{Method: MethodNone}, fmt.Errorf("%w: empty image", ErrNoIdentification)
	}

	res := Result{Method: MethodNone, Language: lang}
	region := vision.Crop(img, vision.IdentifierRegion)
	if s.Recognizer != nil {
		lines, err := ocr.RecognizeAsync(ctx, s.Recognizer, region).Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Printf("WARN recognizer: %v", err)
		}
		res.Lines = lines
	}

	if id, ok := s.Resolver.Resolve(res.Lines, region.Width()); ok {
		res.Identifier = id.String()
		res.TextIdentifier = res.Identifier
		entry, err := s.Lookup(lang, res.Identifier)
		if err == nil {
			res.Method = MethodText
			res.Card = &entry
			return res, nil
		}
		if !errors.Is(err, catalog.ErrCardNotFound) {
			return res, err
		}
		s.logV("text %s not in %s catalog, trying artwork", res.Identifier, lang)
	} else {
		s.logV("no identifier in %d lines, trying artwork", len(res.Lines))
	}

	match, ok, err := s.matchArtwork(ctx, img)
	if err != nil {
		return res, err
	}
	if !ok {
		return res, fmt.Errorf("%w: no text or artwork match", ErrNoIdentification)
	}
	res.Match = &match
	res.Identifier = match.EntryID
	entry, err := s.Lookup(lang, match.EntryID)
	if err != nil {
		if errors.Is(err, catalog.ErrCardNotFound) {
			return res, fmt.Errorf("%w: %v", ErrNoIdentification, err)
		}
		return res, err
	}
	res.Method = MethodVisual
	res.Card = &entry
	return res, nil
}

func (s *Service) matchArtwork(ctx context.Context, img vision.Image) (vision.MatchResult, bool, error) {
	src, err := s.Library.Language(s.SourceLanguage)
	if err != nil {
		return vision.MatchResult{}, false, err
	}
	refs, err := src.References()
	if err != nil {
		return vision.MatchResult{}, false, err
	}
	match, ok := s.Matcher.FindBestMatch(ctx, img, refs)
	if err := ctx.Err(); err != nil {
		return vision.MatchResult{}, false, err
	}
	if ok {
		s.logV("artwork match %s similarity=%.3f", match.EntryID, match.Similarity)
	}
	return match, ok, nil
}

// Manual resolves a typed set code and number.
func (s *Service) Manual(set, number, lang string) (Result, error) {
	lang = s.target(lang)
	res := Result{Method: MethodNone, Language: lang}
	id, err := cardid.ParseManual(set, number)
	if err != nil {
		return res, err
	}
	res.Identifier = id.String()
	entry, err := s.Lookup(lang, res.Identifier)
	if err != nil {
		return res, err
	}
	res.Method = MethodManual
	res.Card = &entry
	return res, nil
}
