package ui

import "fmt"

// Styled stdout helpers shared by the commands.

// Success prints a message with a check mark.
func Success(text string) {
	fmt.Println(SuccessStyle.Render("✓ " + text))
}

func Error(text string) {
	fmt.Println(ErrorStyle.Render("✗ " + text))
}

func Warning(text string) {
	fmt.Println(WarningStyle.Render("! " + text))
}

// Dim prints indented secondary text.
func Dim(text string) {
	fmt.Println(DimStyle.Render("  " + text))
}

// Command prints a command line the user can copy.
func Command(text string) {
	fmt.Println(CommandStyle.Render(text))
}

func Line() {
	fmt.Println()
}

func Print(text string) {
	fmt.Println(text)
}
