package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/template-doctor/template-doctor/internal/core"
)

func main() {
	themeFlag := flag.String("theme", "", "UI theme (cyan, matrix, amber, dracula)")
	listThemes := flag.Bool("list-themes", false, "List all available themes")
	typeFlag := flag.String("type", core.ValidationDocker, "Validation type (docker, ossf, azd)")
	minScoreFlag := flag.Float64("min-score", 7.0, "Minimum acceptable OSSF score (0-10)")
	flag.Parse()

	if *listThemes {
		fmt.Println("Available themes:")
		for _, theme := range ListThemes() {
			fmt.Printf("  - %s\n", theme)
		}
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Println("Usage: doctor-watch [flags] owner/repo")
		flag.PrintDefaults()
		os.Exit(1)
	}
	templateRepo := flag.Arg(0)

	switch *typeFlag {
	case core.ValidationDocker, core.ValidationOSSF, core.ValidationAzd:
	default:
		fmt.Printf("Invalid validation type '%s'. Use docker, ossf or azd.\n", *typeFlag)
		os.Exit(1)
	}

	selectedTheme := *themeFlag
	if selectedTheme == "" {
		selectedTheme = os.Getenv("TEMPLATE_DOCTOR_THEME")
	}
	if selectedTheme == "" {
		selectedTheme = string(ThemeCyan)
	}

	theme := ThemeName(selectedTheme)
	validTheme := false
	for _, t := range ListThemes() {
		if t == theme {
			validTheme = true
			break
		}
	}
	if !validTheme {
		fmt.Printf("Invalid theme '%s'. Use --list-themes to see available options.\n", theme)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(theme, *typeFlag, templateRepo, *minScoreFlag), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
