package capdb

// xtermEntries is a trimmed xterm description.
var xtermEntries = []Entry{
	{Name: "bold", LongName: "enter_bold_mode", Value: []byte("\x1b[1m")},
	{Name: "sgr0", LongName: "exit_attribute_mode", Value: []byte("\x1b(B\x1b[m")},
	{Name: "smcup", LongName: "enter_ca_mode", Value: []byte("\x1b[?1049h\x1b[22;0;0t")},
	{Name: "rmcup", LongName: "exit_ca_mode", Value: []byte("\x1b[?1049l\x1b[23;0;0t")},
	{Name: "el", LongName: "clr_eol", Value: []byte("\x1b[K")},
	{Name: "cup", LongName: "cursor_address", Value: []byte("\x1b[%i%p1%d;%p2%dH")},
	{Name: "home", LongName: "cursor_home", Value: []byte("\x1b[H")},
	{Name: "cuu", LongName: "parm_up_cursor", Value: []byte("\x1b[%p1%dA")},
	{Name: "cuu1", LongName: "cursor_up", Value: []byte("\x1b[A")},
	{Name: "sc", LongName: "save_cursor", Value: []byte("\x1b7")},
	{Name: "rc", LongName: "restore_cursor", Value: []byte("\x1b8")},
	{Name: "smkx", LongName: "keypad_xmit", Value: []byte("\x1b[?1h\x1b=")},
	{Name: "flash", LongName: "flash_screen", Value: []byte("\x1b[?5h$<100/>\x1b[?5l")},
	{Name: "cr", LongName: "carriage_return", Value: []byte("\r")},
	{Name: "empty", LongName: "empty", Value: nil},
}
