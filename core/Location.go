package core

import "fmt"

// SourcePosition is a 1-based line and column pair.
type SourcePosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// TextRange is a byte offset range into the file content. End is exclusive.
type TextRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type Location struct {
	Start SourcePosition `json:"start"`
	End   SourcePosition `json:"end"`
	Text  TextRange      `json:"text"`
	Path  string         `json:"path"`
}

// Valid reports whether the location holds 1-based positions and an ordered offset range.
func (l Location) Valid() bool {
	return l.Start.Line >= 1 && l.Start.Column >= 1 &&
		l.End.Line >= 1 && l.End.Column >= 1 &&
		l.Text.End >= l.Text.Start
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Start.Line, l.Start.Column)
}
