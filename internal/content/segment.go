package content

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Fence markup recognized inside post bodies.
const (
	openFencePrefix = `{code language="`
	openFenceSuffix = `"}`
	closeFence      = "{code}"
)

type mode int

const (
	inParagraph mode = iota
	inCode
)

// rule is one transition of the segmenter. Rules are tried in order at the
// cursor; the first whose guard accepts the current mode and whose pattern
// matches the remaining input wins.
type rule struct {
	guard func(mode) bool
	match func(s string) (width int, arg string, ok bool)
	apply func(sg *segmenter, arg string)
}

var rules = []rule{
	{guard: anyMode, match: matchOpenFence, apply: (*segmenter).openCode},
	{guard: only(inParagraph), match: matchBlankLines, apply: (*segmenter).endParagraph},
	{guard: only(inCode), match: matchCloseFence, apply: (*segmenter).closeCode},
}

func anyMode(mode) bool { return true }

func only(m mode) func(mode) bool {
	return func(cur mode) bool { return cur == m }
}

// segmenter holds the cursor state of a single Segment call.
type segmenter struct {
	remaining string
	acc       strings.Builder
	mode      mode
	language  string
	blocks    []Block
}

// Segment splits a post body into paragraphs and fenced code blocks.
//
// Paragraphs are separated by runs of two or more newlines. A code block
// opens with {code language="<lang>"} and closes with {code}; blank lines
// inside it are kept. An opening fence is honored even inside a code block,
// where it ends the current block and starts a new one. An unterminated
// fence runs to the end of the input, and a stray {code} outside a code
// block is literal text.
//
// Segment never fails. Empty or whitespace-only input yields no blocks.
func Segment(input string) []Block {
	sg := &segmenter{remaining: input, blocks: []Block{}}
	for sg.remaining != "" {
		if !sg.step() {
			sg.literal()
		}
	}
	sg.flush()
	return sg.blocks
}

// step applies the first matching rule and reports whether one matched.
func (sg *segmenter) step() bool {
	for _, r := range rules {
		if !r.guard(sg.mode) {
			continue
		}
		width, arg, ok := r.match(sg.remaining)
		if !ok {
			continue
		}
		sg.remaining = sg.remaining[width:]
		r.apply(sg, arg)
		return true
	}
	return false
}

// literal consumes at least one character as block text, stopping before
// the next position where a rule could match.
func (sg *segmenter) literal() {
	_, w := utf8.DecodeRuneInString(sg.remaining)
	n := len(sg.remaining)
	if i := strings.IndexAny(sg.remaining[w:], "{\n"); i >= 0 {
		n = w + i
	}
	sg.acc.WriteString(sg.remaining[:n])
	sg.remaining = sg.remaining[n:]
}

func (sg *segmenter) openCode(lang string) {
	sg.flush()
	sg.mode = inCode
	sg.language = lang
}

func (sg *segmenter) endParagraph(string) {
	sg.flush()
}

func (sg *segmenter) closeCode(string) {
	sg.flush()
	sg.mode = inParagraph
}

// flush emits the accumulated text as a block of the current mode. Empty
// text emits nothing and drops back to paragraph mode.
func (sg *segmenter) flush() {
	text := strings.TrimSpace(sg.acc.String())
	sg.acc.Reset()
	if text == "" {
		sg.mode = inParagraph
		return
	}
	b := Block{Kind: Paragraph, Text: text}
	if sg.mode == inCode {
		b.Kind = Code
		b.Language = sg.language
	}
	sg.blocks = append(sg.blocks, b)
}

func matchOpenFence(s string) (int, string, bool) {
	if !strings.HasPrefix(s, openFencePrefix) {
		return 0, "", false
	}
	rest := s[len(openFencePrefix):]
	end := strings.IndexByte(rest, '"')
	if end < 0 || !strings.HasPrefix(rest[end:], openFenceSuffix) {
		return 0, "", false
	}
	return len(openFencePrefix) + end + len(openFenceSuffix), rest[:end], true
}

func matchBlankLines(s string) (int, string, bool) {
	n := 0
	for n < len(s) && s[n] == '\n' {
		n++
	}
	if n < 2 {
		return 0, "", false
	}
	return n, "", true
}

func matchCloseFence(s string) (int, string, bool) {
	if !strings.HasPrefix(s, closeFence) {
		return 0, "", false
	}
	return len(closeFence), "", true
}

// ErrDanglingFence is returned by Join when a block ends inside an
// unfinished opening fence that the markup after it would complete.
var ErrDanglingFence = errors.New("block ends in an unfinished code fence")

// Join renders blocks back into fence markup. When it succeeds,
// Segment(Join(b)) reproduces b for any b produced by Segment.
//
// A block whose last {code language=" has no closing quote cannot always
// be written back: the quote search runs on into the following blocks and
// may find a "} there. Join reports ErrDanglingFence in that case.
func Join(blocks []Block) (string, error) {
	var b strings.Builder
	ends := make([]int, len(blocks))
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if block.Kind == Code {
			b.WriteString(openFencePrefix + block.Language + openFenceSuffix + "\n")
		}
		b.WriteString(block.Text)
		ends[i] = b.Len()
		if block.Kind == Code {
			b.WriteString("\n" + closeFence)
		}
	}
	out := b.String()

	for i, block := range blocks {
		if !dangling(block.Text) {
			continue
		}
		rest := out[ends[i]:]
		if q := strings.IndexByte(rest, '"'); q >= 0 && strings.HasPrefix(rest[q:], openFenceSuffix) {
			return "", fmt.Errorf("joining block %d: %w", i, ErrDanglingFence)
		}
	}
	return out, nil
}

// dangling reports whether the last opening-fence prefix in text has no
// quote after it.
func dangling(text string) bool {
	i := strings.LastIndex(text, openFencePrefix)
	return i >= 0 && !strings.Contains(text[i+len(openFencePrefix):], `"`)
}
