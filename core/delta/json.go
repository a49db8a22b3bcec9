package delta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidDelta is returned when decoding a malformed delta document.
var ErrInvalidDelta = errors.New("invalid delta")

type wireOp struct {
	Insert     json.RawMessage `json:"insert,omitempty"`
	Retain     int             `json:"retain,omitempty"`
	Delete     int             `json:"delete,omitempty"`
	Attributes Attrs           `json:"attributes,omitempty"`
}

// MarshalJSON encodes the op in the Quill wire shape:
// {"insert": "text" | {"image": "src"}, "attributes": {...}}.
func (o Op) MarshalJSON() ([]byte, error) {
	w := wireOp{Attributes: o.Attrs}
	switch o.Kind {
	case KindRetain:
		w.Retain = o.Count
	case KindDelete:
		w.Delete = o.Count
	case KindInsert:
		var (
			raw []byte
			err error
		)
		if o.Embed != nil {
			raw, err = json.Marshal(map[string]string{o.Embed.Key: o.Embed.Value})
		} else {
			raw, err = json.Marshal(o.Text)
		}
		if err != nil {
			return nil, err
		}
		w.Insert = raw
	default:
		return nil, fmt.Errorf("%w: unknown op kind %q", ErrInvalidDelta, o.Kind)
	}
	return json.Marshal(w)
}

func (o *Op) UnmarshalJSON(data []byte) error {
	var w wireOp
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDelta, err)
	}
	*o = Op{Attrs: w.Attributes}
	switch {
	case len(w.Insert) > 0:
		o.Kind = KindInsert
		if w.Insert[0] == '"' {
			return json.Unmarshal(w.Insert, &o.Text)
		}
		var embed map[string]string
		if err := json.Unmarshal(w.Insert, &embed); err != nil || len(embed) != 1 {
			return fmt.Errorf("%w: embed must be a single-key object", ErrInvalidDelta)
		}
		for k, v := range embed {
			o.Embed = &Embed{Key: k, Value: v}
		}
	case w.Retain > 0:
		o.Kind, o.Count = KindRetain, w.Retain
	case w.Delete > 0:
		o.Kind, o.Count = KindDelete, w.Delete
	default:
		return fmt.Errorf("%w: op has no insert, retain or delete", ErrInvalidDelta)
	}
	return nil
}

// MarshalJSON encodes the delta as {"ops": [...]}.
func (d Delta) MarshalJSON() ([]byte, error) {
	ops := []Op(d)
	if ops == nil {
		ops = []Op{}
	}
	return json.Marshal(struct {
		Ops []Op `json:"ops"`
	}{ops})
}

// UnmarshalJSON accepts {"ops": [...]} or a bare op array.
func (d *Delta) UnmarshalJSON(data []byte) error {
	var ops []Op
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &ops); err != nil {
			return err
		}
	} else {
		var doc struct {
			Ops []Op `json:"ops"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		ops = doc.Ops
	}
	*d = New(ops...)
	return nil
}
