package nlu

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/tbxark/formbot/types"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// numberPattern takes the whole numeric token, so "2.5", "1,000" and "3-4"
// reach the validator as written.
var numberPattern = regexp.MustCompile(`-?\d+(?:[.,-]\d+)*`)

// LocalInterpreter is a keyword based interpreter for the restaurant domain.
type LocalInterpreter struct {
	StopPhrases     []string
	DenyKeywords    []string
	AffirmKeywords  []string
	GreetKeywords   []string
	RequestKeywords []string
	Cuisines        []string
	SeatingKeywords []string
}

func NewLocalInterpreter() *LocalInterpreter {
	return &LocalInterpreter{
		StopPhrases:     []string{"stop", "cancel", "quit", "exit", "never mind", "forget it"},
		DenyKeywords:    []string{"no", "nope", "not", "never", "nothing", "dont", "don't", "nah"},
		AffirmKeywords:  []string{"yes", "yeah", "yep", "sure", "ok", "okay", "correct", "absolutely", "indeed"},
		GreetKeywords:   []string{"hi", "hello", "hey"},
		RequestKeywords: []string{"restaurant", "book", "reserve", "table"},
		Cuisines: []string{
			"caribbean", "chinese", "french", "greek", "indian", "italian", "mexican",
			"american", "japanese", "korean", "spanish", "thai", "turkish", "vietnamese",
		},
		SeatingKeywords: []string{"outside", "outdoor", "outdoors", "terrace", "inside", "indoor", "indoors"},
	}
}

func (p *LocalInterpreter) Parse(ctx context.Context, req *types.TurnRequest) (types.Message, error) {
	msg := types.Message{Text: strings.TrimSpace(req.UserText)}
	if msg.Text == "" {
		return msg, fmt.Errorf("empty user message")
	}
	folded := fold(msg.Text)
	words := tokenize(msg.Text)
	foldedWords := make([]string, len(words))
	for i, w := range words {
		foldedWords[i] = fold(w)
	}

	if n := numberPattern.FindString(msg.Text); n != "" {
		msg.Entities = append(msg.Entities, types.Entity{Entity: "number", Value: n})
	}
	for i, w := range foldedWords {
		if slices.Contains(p.Cuisines, w) {
			msg.Entities = append(msg.Entities, types.Entity{Entity: "cuisine", Value: words[i]})
			break
		}
	}
	for _, w := range foldedWords {
		if slices.Contains(p.SeatingKeywords, w) {
			msg.Entities = append(msg.Entities, types.Entity{Entity: "seating", Value: w})
			break
		}
	}

	msg.Intent = p.intent(folded, foldedWords, len(msg.Entities) > 0)
	return msg, nil
}

func (p *LocalInterpreter) intent(folded string, words []string, hasEntities bool) string {
	if slices.Contains(p.StopPhrases, folded) {
		return IntentStop
	}
	if containsAny(words, p.DenyKeywords) {
		return IntentDeny
	}
	if containsAny(words, p.AffirmKeywords) {
		return IntentAffirm
	}
	if !hasEntities && containsAny(words, p.GreetKeywords) {
		return IntentGreet
	}
	if !hasEntities && containsAny(words, p.RequestKeywords) {
		return IntentRequest
	}
	return IntentInform
}

func containsAny(words, keywords []string) bool {
	for _, w := range words {
		if slices.Contains(keywords, w) {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
}

// fold lower-cases text and strips diacritics.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return strings.ToLower(strings.TrimSpace(out))
}

type FailbackInterpreter struct {
	interpreters []Interpreter
}

func NewFailbackInterpreter(interpreters ...Interpreter) *FailbackInterpreter {
	return &FailbackInterpreter{interpreters: interpreters}
}

func (p *FailbackInterpreter) Parse(ctx context.Context, req *types.TurnRequest) (types.Message, error) {
	var lastErr error
	for _, interpreter := range p.interpreters {
		msg, err := interpreter.Parse(ctx, req)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}
	return types.Message{Text: req.UserText}, lastErr
}

var (
	_ Interpreter = (*LocalInterpreter)(nil)
	_ Interpreter = (*FailbackInterpreter)(nil)
)
