package dispatch

import (
	"fmt"

	"github.com/stretchr/testify/mock"
)

type mockScreen struct {
	mock.Mock
}

func (m *mockScreen) Print(r rune)       { m.Called(r) }
func (m *mockScreen) SetBold(on bool)    { m.Called(on) }
func (m *mockScreen) SaveCursor()        { m.Called() }
func (m *mockScreen) AlternateBuffer()   { m.Called() }
func (m *mockScreen) NormalBuffer()      { m.Called() }
func (m *mockScreen) EraseInLine()       { m.Called() }
func (m *mockScreen) MoveLeft(full bool) { m.Called(full) }
func (m *mockScreen) MoveDown()          { m.Called() }

// opScreen records every call as a short string, in order.
type opScreen struct {
	ops []string
}

func (s *opScreen) Print(r rune)       { s.ops = append(s.ops, fmt.Sprintf("print(%q)", r)) }
func (s *opScreen) SetBold(on bool)    { s.ops = append(s.ops, fmt.Sprintf("bold(%t)", on)) }
func (s *opScreen) SaveCursor()        { s.ops = append(s.ops, "save") }
func (s *opScreen) AlternateBuffer()   { s.ops = append(s.ops, "alt") }
func (s *opScreen) NormalBuffer()      { s.ops = append(s.ops, "normal") }
func (s *opScreen) EraseInLine()       { s.ops = append(s.ops, "el") }
func (s *opScreen) MoveLeft(full bool) { s.ops = append(s.ops, fmt.Sprintf("left(%t)", full)) }
func (s *opScreen) MoveDown()          { s.ops = append(s.ops, "down") }
