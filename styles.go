package main

import (
	"pioneer-tui/styles"
)

// -------------------- THEME (Lip Gloss) --------------------
// Styles come from the styles package

var (
	cBorder  = styles.CBorder
	cMuted   = styles.CMuted
	cText    = styles.CText
	cAccent  = styles.CAccent
	cAccent2 = styles.CAccent2
	cWarn    = styles.CWarn
	cError   = styles.CError

	appStyle    = styles.AppStyle
	panelStyle  = styles.PanelStyle
	hotkeyStyle = styles.HotkeyStyle
)
