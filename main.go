package main

import (
	"fmt"
	"os"

	"pioneer-tui/config"

	tea "github.com/charmbracelet/bubbletea"
)

// -------------------- MAIN --------------------

func main() {
	path := config.DefaultPath()
	cfg := config.LoadOrCreate(path)
	if err := config.ApplyEnv(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	m := newModel(cfg, path)
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
