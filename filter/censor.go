package filter

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"
)

// AggressiveReplacement is returned verbatim for profane text in aggressive
// mode, regardless of the input.
const AggressiveReplacement = "[CONTENT FILTERED: Inappropriate language detected]"

const maskRune = '*'

// Censor transforms profane text according to mode. An unrecognized mode
// is rejected before anything else; a clean verdict passes the text through
// unchanged for every valid mode.
func (e *Engine) Censor(ctx context.Context, text string, verdict *Verdict, mode Mode) (string, error) {
	switch mode {
	case ModeFull, ModeWord, ModeAggressive:
	default:
		return "", ErrUnknownMode
	}

	if !verdict.IsProfane {
		return text, nil
	}

	switch mode {
	case ModeWord:
		return e.censorBySegment(ctx, text)
	case ModeAggressive:
		return AggressiveReplacement, nil
	default:
		return censorFull(text), nil
	}
}

// CensorWord masks a single word with '*' of the same rune length.
func CensorWord(word string) string {
	return strings.Repeat(string(maskRune), len([]rune(word)))
}

// censorFull masks every rune that is not whitespace, preserving the rune
// count and the whitespace layout. It censors indiscriminately because the
// classifier only labels the text as a whole.
func censorFull(text string) string {
	masked := []rune(text)
	for i, r := range masked {
		if !unicode.IsSpace(r) {
			masked[i] = maskRune
		}
	}
	return string(masked)
}

// censorBySegment re-classifies each sentence segment independently and
// fully masks the profane ones. Classification fans out concurrently;
// segment order in the reassembled output is preserved. Strictly more
// expensive than full masking, and short segments are a known source of
// false negatives.
func (e *Engine) censorBySegment(ctx context.Context, text string) (string, error) {
	segments := splitSegments(text)

	out := make([]string, len(segments))
	eg, ctx := errgroup.WithContext(ctx)
	for i, seg := range segments {
		if seg.delimiter || strings.TrimSpace(seg.text) == "" {
			out[i] = seg.text
			continue
		}

		i, seg := i, seg
		eg.Go(func() error {
			verdict, err := e.Classify(ctx, seg.text)
			if err != nil {
				return err
			}

			if verdict.IsProfane {
				out[i] = censorFull(seg.text)
			} else {
				out[i] = seg.text
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return "", err
	}

	return strings.Join(out, ""), nil
}

type segment struct {
	text      string
	delimiter bool
}

// splitSegments splits text into sentence segments and delimiter runs.
// A delimiter run is one or more of . ! ? plus any trailing whitespace.
// Joining the segments back reproduces the input byte for byte; a text
// without any delimiter is a single segment.
func splitSegments(text string) []segment {
	var segments []segment
	runes := []rune(text)

	start := 0
	i := 0
	for i < len(runes) {
		if !isSegmentDelimiter(runes[i]) {
			i++
			continue
		}

		if i > start {
			segments = append(segments, segment{text: string(runes[start:i])})
		}

		j := i
		for j < len(runes) && isSegmentDelimiter(runes[j]) {
			j++
		}
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}

		segments = append(segments, segment{text: string(runes[i:j]), delimiter: true})
		start = j
		i = j
	}

	if start < len(runes) {
		segments = append(segments, segment{text: string(runes[start:])})
	}

	return segments
}

func isSegmentDelimiter(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
