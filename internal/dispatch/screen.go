package dispatch

// Screen is the screen model the dispatcher mutates. It owns the pen
// (cursor position and attributes) and the buffer selection.
type Screen interface {
	Print(r rune)
	SetBold(on bool)
	SaveCursor()
	AlternateBuffer()
	NormalBuffer()
	// EraseInLine clears from the pen to the end of the current line.
	EraseInLine()
	// MoveLeft moves the pen one column left, or to column 0 when full is set.
	MoveLeft(full bool)
	MoveDown()
}
