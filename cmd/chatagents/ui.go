package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func printTitle(s string) {
	fmt.Println(titleStyle.Render(s))
}

func printField(label string, value any) {
	fmt.Printf("%s %v\n", labelStyle.Render(label+":"), value)
}

func printNote(format string, a ...any) {
	fmt.Println(dimStyle.Render(fmt.Sprintf(format, a...)))
}

func printWarn(format string, a ...any) {
	fmt.Println(warnStyle.Render(fmt.Sprintf(format, a...)))
}

func printBox(s string) {
	fmt.Println(boxStyle.Render(s))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, errStyle.Render("error: ")+err.Error())
	os.Exit(1)
}
