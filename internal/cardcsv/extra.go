package cardcsv

import (
	"bytes"
	"encoding/json"
)

// ExtraKind records how an extra cell was decoded.
type ExtraKind int

const (
	// ExtraJSON means the cell held valid JSON, kept verbatim in Extra.JSON.
	ExtraJSON ExtraKind = iota + 1
	// ExtraNote means the cell was not JSON; the raw text is in Extra.Note.
	ExtraNote
)

func (k ExtraKind) String() string {
	switch k {
	case ExtraJSON:
		return "json"
	case ExtraNote:
		return "note"
	default:
		return "unknown"
	}
}

// Extra is the decoded auxiliary payload of a card.
//
// It serializes to the decoded JSON value for ExtraJSON, and to
// {"note": <raw>} for ExtraNote.
type Extra struct {
	Kind ExtraKind
	JSON json.RawMessage
	Note string
}

// DecodeExtra strictly decodes raw as JSON, falling back to a note that
// carries the raw text.
func DecodeExtra(raw string) Extra {
	if json.Valid([]byte(raw)) {
		return Extra{Kind: ExtraJSON, JSON: json.RawMessage(raw)}
	}
	return Extra{Kind: ExtraNote, Note: raw}
}

type noteValue struct {
	Note string `json:"note"`
}

// MarshalJSON implements json.Marshaler.
func (e Extra) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case ExtraJSON:
		var buf bytes.Buffer
		if err := json.Compact(&buf, e.JSON); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ExtraNote:
		return json.Marshal(noteValue{Note: e.Note})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON value as an ExtraJSON payload.
func (e *Extra) UnmarshalJSON(data []byte) error {
	e.Kind = ExtraJSON
	e.JSON = append(json.RawMessage(nil), data...)
	e.Note = ""
	return nil
}
