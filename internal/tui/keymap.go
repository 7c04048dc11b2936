package tui

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyCtrlC     = "ctrl+c"
	KeyTab       = "tab"
	KeyShiftTab  = "shift+tab"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyJ         = "j"
	KeyK         = "k"
	KeyEnter     = "enter"
	KeySpace     = " "
	KeyEsc       = "esc"
	KeyEdit      = "e"
	KeyAdd       = "a"
	KeyDelete    = "d"
	KeyRefresh   = "r"
	KeySave      = "ctrl+s"
	KeyPrompt    = "ctrl+p"
	KeyReflect   = "ctrl+g"
)
