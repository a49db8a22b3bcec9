package match

import "github.com/gaurav-prasanna/pastepipe/core/delta"

// Scope says where an attribute lives in a delta.
type Scope int

const (
	// ScopeInline attributes format text and embeds, never newlines.
	ScopeInline Scope = iota + 1
	// ScopeBlock attributes ride on the newline ending a line, and on
	// block embeds.
	ScopeBlock
)

// Attribute names produced by the built-in matchers.
const (
	AttrBold            = "bold"
	AttrItalic          = "italic"
	AttrUnderline       = "underline"
	AttrStrike          = "strike"
	AttrLink            = "link"
	AttrCode            = "code"
	AttrColor           = "color"
	AttrBackground      = "background"
	AttrFont            = "font"
	AttrSize            = "size"
	AttrScript          = "script"
	AttrWidth           = "width"
	AttrHeight          = "height"
	AttrAlt             = "alt"
	AttrHeader          = "header"
	AttrList            = "list"
	AttrIndent          = "indent"
	AttrBlockquote      = "blockquote"
	AttrCodeBlock       = "code-block"
	AttrAlign           = "align"
	AttrDirection       = "direction"
	AttrTable           = "table"
	AttrTableHeaderCell = "tableHeaderCell"
	AttrTableWidth      = "tableWidth"
	AttrTableHeight     = "tableHeight"
	AttrCellWidth       = "cellWidth"
	AttrCellHeight      = "cellHeight"
)

// Embed keys.
const (
	EmbedImage = "image"
	EmbedVideo = "video"
)

func defaultAttributeScopes() map[string]Scope {
	return map[string]Scope{
		AttrHeader:          ScopeBlock,
		AttrList:            ScopeBlock,
		AttrIndent:          ScopeBlock,
		AttrBlockquote:      ScopeBlock,
		AttrCodeBlock:       ScopeBlock,
		AttrAlign:           ScopeBlock,
		AttrDirection:       ScopeBlock,
		AttrTable:           ScopeBlock,
		AttrTableHeaderCell: ScopeBlock,
		AttrTableWidth:      ScopeBlock,
		AttrTableHeight:     ScopeBlock,
		AttrCellWidth:       ScopeBlock,
		AttrCellHeight:      ScopeBlock,
	}
}

func defaultEmbedScopes() map[string]Scope {
	return map[string]Scope{
		EmbedImage: ScopeInline,
		EmbedVideo: ScopeBlock,
	}
}

// overlay sets each key of attrs on op unless op already carries it, so
// formatting set deeper in the tree wins over its ancestors'.
func overlay(op delta.Op, attrs delta.Attrs) delta.Op {
	var out delta.Attrs
	for k, v := range attrs {
		if op.Attrs.Has(k) {
			continue
		}
		if out == nil {
			out = op.Attrs.Clone()
			if out == nil {
				out = make(delta.Attrs, len(attrs))
			}
		}
		out[k] = v
	}
	if out != nil {
		op.Attrs = out
	}
	return op
}

// ApplyInline overlays attrs on every text and embed insert, skipping
// newlines.
func ApplyInline(d delta.Delta, attrs delta.Attrs) delta.Delta {
	if len(attrs) == 0 {
		return d
	}
	return d.Map(func(op delta.Op) delta.Op {
		if op.Kind != delta.KindInsert || op.IsNewline() {
			return op
		}
		return overlay(op, attrs)
	})
}

// ApplyBlock overlays attrs on every newline and on every embed for which
// isBlockEmbed reports true. Ops rejected by filter are left alone.
func ApplyBlock(d delta.Delta, attrs delta.Attrs, isBlockEmbed func(string) bool, filter func(delta.Op) bool) delta.Delta {
	if len(attrs) == 0 {
		return d
	}
	return d.Map(func(op delta.Op) delta.Op {
		switch {
		case op.IsNewline():
		case op.IsEmbed() && isBlockEmbed != nil && isBlockEmbed(op.Embed.Key):
		default:
			return op
		}
		if filter != nil && !filter(op) {
			return op
		}
		return overlay(op, attrs)
	})
}

// Split partitions attrs into inline and block attributes.
func (r *Registry) Split(attrs delta.Attrs) (inline, block delta.Attrs) {
	for k, v := range attrs {
		if r.Scope(k) == ScopeBlock {
			if block == nil {
				block = delta.Attrs{}
			}
			block[k] = v
			continue
		}
		if inline == nil {
			inline = delta.Attrs{}
		}
		inline[k] = v
	}
	return inline, block
}

// ApplyFormats overlays attrs on d, routing each attribute by its scope.
func (r *Registry) ApplyFormats(d delta.Delta, attrs delta.Attrs) delta.Delta {
	inline, block := r.Split(attrs)
	d = ApplyInline(d, inline)
	return ApplyBlock(d, block, r.IsBlockEmbed, nil)
}
