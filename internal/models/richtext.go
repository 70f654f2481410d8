package models

import "strings"

// Block is a CMS rich-text block. Only paragraphs are produced by the editor.
type Block struct {
	Type     string     `json:"type"`
	Children []TextLeaf `json:"children"`
}

// TextLeaf is a run of text inside a block.
type TextLeaf struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
}

// EditorNode is a node of the admin editor document (doc > paragraph > text).
type EditorNode struct {
	Type    string       `json:"type"`
	Content []EditorNode `json:"content,omitempty"`
	Text    string       `json:"text,omitempty"`
	Marks   []EditorMark `json:"marks,omitempty"`
}

// EditorMark is an inline formatting mark.
type EditorMark struct {
	Type string `json:"type"`
}

const (
	blockParagraph = "paragraph"
	nodeDoc        = "doc"
	nodeText       = "text"
	markBold       = "bold"
	markItalic     = "italic"
)

// BlocksFromDoc converts an editor document into CMS blocks. Text nodes that
// are blank are dropped, and so are paragraphs left with no text.
func BlocksFromDoc(doc EditorNode) []Block {
	blocks := make([]Block, 0, len(doc.Content))
	for _, node := range doc.Content {
		if node.Type != blockParagraph {
			continue
		}
		children := make([]TextLeaf, 0, len(node.Content))
		for _, leaf := range node.Content {
			if leaf.Type != nodeText || strings.TrimSpace(leaf.Text) == "" {
				continue
			}
			t := TextLeaf{Type: nodeText, Text: leaf.Text}
			for _, m := range leaf.Marks {
				switch m.Type {
				case markBold:
					t.Bold = true
				case markItalic:
					t.Italic = true
				}
			}
			children = append(children, t)
		}
		if len(children) == 0 {
			continue
		}
		blocks = append(blocks, Block{Type: blockParagraph, Children: children})
	}
	return blocks
}

// DocFromBlocks converts CMS blocks back into an editor document.
func DocFromBlocks(blocks []Block) EditorNode {
	doc := EditorNode{Type: nodeDoc, Content: make([]EditorNode, 0, len(blocks))}
	for _, b := range blocks {
		p := EditorNode{Type: blockParagraph}
		for _, leaf := range b.Children {
			n := EditorNode{Type: nodeText, Text: leaf.Text}
			if leaf.Bold {
				n.Marks = append(n.Marks, EditorMark{Type: markBold})
			}
			if leaf.Italic {
				n.Marks = append(n.Marks, EditorMark{Type: markItalic})
			}
			p.Content = append(p.Content, n)
		}
		doc.Content = append(doc.Content, p)
	}
	return doc
}
