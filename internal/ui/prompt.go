package ui

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"forge/pkg/manager"
	"forge/pkg/snapshot"
)

// Confirm prompts the user for yes/no confirmation.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	label := prompt
	if defaultYes {
		label += " [Y/n]"
	} else {
		label += " [y/N]"
	}

	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if defaultYes {
		p.Default = "y"
	}

	result, err := p.Run()
	if err != nil {
		if err == promptui.ErrAbort {
			return false, nil
		}
		return defaultYes, nil
	}

	result = strings.ToLower(strings.TrimSpace(result))
	if result == "" {
		return defaultYes, nil
	}
	return result == "y" || result == "yes", nil
}

// SelectPackage lets the user pick one package from search results.
func SelectPackage(packages []manager.Package, prompt string) (*manager.Package, error) {
	if len(packages) == 0 {
		return nil, fmt.Errorf("no packages to select from")
	}
	if len(packages) == 1 {
		return &packages[0], nil
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ .Name | cyan }} {{ .Version | green }} [{{ .Source | magenta }}]",
		Inactive: "  {{ .Name }} {{ .Version | faint }} [{{ .Source | faint }}]",
		Selected: "✓ {{ .Name | cyan }} {{ .Version | green }} [{{ .Source | magenta }}]",
	}

	searcher := func(input string, index int) bool {
		return strings.Contains(strings.ToLower(packages[index].Name), strings.ToLower(input))
	}

	p := promptui.Select{
		Label:     prompt,
		Items:     packages,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	index, _, err := p.Run()
	if err != nil {
		return nil, err
	}
	return &packages[index], nil
}

// SelectSnapshot lets the user pick a snapshot to restore.
func SelectSnapshot(snapshots []snapshot.Snapshot, prompt string) (*snapshot.Snapshot, error) {
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("no snapshots to select from")
	}
	if len(snapshots) == 1 {
		return &snapshots[0], nil
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ .ID | cyan }} {{ .Trigger | magenta }} ({{ .PackageCount }} packages)",
		Inactive: "  {{ .ID }} {{ .Trigger | faint }} ({{ .PackageCount }} packages)",
		Selected: "✓ {{ .ID | cyan }}",
	}

	p := promptui.Select{
		Label:     prompt,
		Items:     snapshots,
		Templates: templates,
		Size:      10,
	}

	index, _, err := p.Run()
	if err != nil {
		return nil, err
	}
	return &snapshots[index], nil
}

// SelectSource lets the user pick a package manager.
func SelectSource(sources []string, prompt string) (string, error) {
	if len(sources) == 0 {
		return "", fmt.Errorf("no sources available")
	}
	if len(sources) == 1 {
		return sources[0], nil
	}

	p := promptui.Select{
		Label: prompt,
		Items: sources,
		Size:  10,
	}

	_, result, err := p.Run()
	return result, err
}

// Input prompts for a line of text.
func Input(prompt string, defaultValue string) (string, error) {
	p := promptui.Prompt{
		Label:   prompt,
		Default: defaultValue,
	}

	result, err := p.Run()
	if err != nil {
		return defaultValue, err
	}
	return result, nil
}
