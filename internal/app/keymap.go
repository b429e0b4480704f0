package app

// Key binding constants used in handleKey.
const (
	KeyQuit        = "q"
	KeyQuitUpper   = "Q"
	KeyCtrlC       = "ctrl+c"
	KeySpace       = " "
	KeyCancel      = "c"
	KeyReset       = "r"
	KeyOverlay     = "o"
	KeyDemoFinish  = "f"
	KeyCancelUpper = "C"
	KeyResetUpper  = "R"
)
