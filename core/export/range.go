package export

import "github.com/gaurav-prasanna/pastepipe/core/delta"

// Range returns the part of d between index and index+length, shaped for
// export. Every line the range touches ends in a newline carrying the
// attributes of the line it came from, so a selection starting or ending
// mid-line keeps that line's block format. A trailing line with no newline
// in d stays open.
func Range(d delta.Delta, index, length int) delta.Delta {
	if length <= 0 {
		return nil
	}
	if index < 0 {
		index = 0
	}
	end := index + length

	var out delta.Builder
	pos := 0
	for _, line := range d.Lines() {
		if pos >= end {
			break
		}
		n := line.Content.Length()
		nl := pos + n
		if nl < index || (line.Open && nl <= index) {
			pos = nl + 1
			continue
		}
		content := line.Content.Slice(max(index, pos)-pos, min(end, nl)-pos)
		// A range starting on a line's newline selects nothing of that line.
		if len(content) == 0 && index > pos {
			pos = nl + 1
			continue
		}
		out.Concat(content)
		if !line.Open {
			out.Insert(delta.Newline, line.Attrs)
		}
		pos = nl + 1
	}
	return out.Delta()
}
