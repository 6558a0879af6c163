// Package content turns the raw body of a stored post into an ordered
// sequence of renderable blocks.
package content

import (
	"encoding/json"
	"fmt"
)

// Kind identifies what a Block holds.
type Kind int

const (
	Paragraph Kind = iota
	Code
)

// String returns the wire name of the kind ("text" or "code").
func (k Kind) String() string {
	switch k {
	case Paragraph:
		return "text"
	case Code:
		return "code"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Block is one unit of post content: a paragraph of plain text or a code
// block tagged with the language declared by its opening fence.
type Block struct {
	Kind     Kind
	Text     string
	Language string // only set for Code blocks
}

// wireBlock is the JSON shape served to the front end.
type wireBlock struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

func (b Block) MarshalJSON() ([]byte, error) {
	w := wireBlock{Type: b.Kind.String(), Content: b.Text}
	if b.Kind == Code {
		w.Language = b.Language
	}
	return json.Marshal(w)
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "text", "":
		*b = Block{Kind: Paragraph, Text: w.Content}
	case "code":
		*b = Block{Kind: Code, Text: w.Content, Language: w.Language}
	default:
		return fmt.Errorf("unknown block type %q", w.Type)
	}
	return nil
}
