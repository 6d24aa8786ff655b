package session

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			SetString("[INFO]")

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			SetString("[WARN]")

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			SetString("[ERROR]")

	echoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))
)
