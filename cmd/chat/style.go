package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = dimStyle.Render("assistant> ")
	failMark        = failStyle.Render("✗")
)

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\x1b[2K"
