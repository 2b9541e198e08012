package demo

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/cfa533.go/pkg/cfa533"
	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
	fx "github.com/robotalks/cfa533.go/pkg/framework"
)

// moreMark replaces the last visible character of a clipped line.
const moreMark = '~'

// Field is a labeled value.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DefaultFields are shown if no field file is given.
func DefaultFields() []Field {
	return []Field{
		{Name: "Version:", Value: "2.1.3.12334"},
		{Name: "Label1:", Value: "123.123.123.123"},
		{Name: "LabelTwo:", Value: "255.255.255.0"},
		{Name: "Long:", Value: "abcdefghijklmnopqrstuvwxyz"},
		{Name: "Empty:", Value: ""},
		{Name: "ReallyReallyReallyLongLabel:", Value: "abc"},
		{Name: "Suuuuuuuperrrrrlong:", Value: "abcdefghijklmnopqrstuvwxyz"},
	}
}

// LoadFields reads a JSON array of fields.
func LoadFields(path string) ([]Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: no fields", path)
	}
	return fields, nil
}

// LineText returns the part of text visible when scrolled to col.
// Text longer than the screen is clipped with a trailing '~'.
func LineText(text string, col int) string {
	runes := []rune(text)
	if len(runes) <= cfa533.Columns {
		return text
	}
	if len(runes)-col < cfa533.Columns {
		col = len(runes) - cfa533.Columns
	}
	runes = runes[col:]
	if len(runes) > cfa533.Columns {
		runes = append(runes[:cfa533.Columns-1], moreMark)
	}
	return string(runes)
}

// MultiField shows one field at a time: name on the first line, value on
// the second. Up and down select a field, left and right scroll it.
type MultiField struct {
	Display Display
	Fields  []Field

	index, col int
	dirty      bool
}

// NewMultiField creates a MultiField.
func NewMultiField(d Display, fields []Field) *MultiField {
	return &MultiField{Display: d, Fields: fields, dirty: true}
}

// Selected returns the index of the shown field and the scroll column.
func (m *MultiField) Selected() (int, int) {
	return m.index, m.col
}

// HandleKey updates the selection, returns false if the key is ignored.
func (m *MultiField) HandleKey(action comm.KeypadAction) bool {
	switch action {
	case comm.KeyDownPress:
		m.index++
		m.col = 0
	case comm.KeyUpPress:
		m.index--
		m.col = 0
	case comm.KeyRightPress:
		m.col++
	case comm.KeyLeftPress:
		m.col--
	default:
		return false
	}
	m.normalize()
	m.dirty = true
	return true
}

func (m *MultiField) normalize() {
	if m.index >= len(m.Fields) {
		m.index = 0
	}
	if m.index < 0 {
		m.index = len(m.Fields) - 1
	}
	field := m.Fields[m.index]
	longest := len([]rune(field.Name))
	if n := len([]rune(field.Value)); n > longest {
		longest = n
	}
	if m.col > longest-cfa533.Columns || m.col < 0 {
		m.col = 0
	}
}

// Control implements Controller.
func (m *MultiField) Control(cc fx.ControlContext) error {
	if len(m.Fields) == 0 {
		return nil
	}
	for _, action := range KeyActions(cc) {
		m.HandleKey(action)
	}
	if !m.dirty {
		return nil
	}
	field := m.Fields[m.index]
	glog.V(1).Infof("field %d: %s %s", m.index, field.Name, field.Value)
	if err := m.Display.SetContents(cc.Context(),
		LineText(field.Name, m.col), LineText(field.Value, m.col)); err != nil {
		return err
	}
	m.dirty = false
	return nil
}
