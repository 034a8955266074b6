package cmd

import (
	"os"

	"github.com/manifoldco/promptui"
)

func promptContinue(label string) {
	prompt := promptui.Prompt{
		Label: label,
	}
	_, err := prompt.Run()
	if err != nil {
		// interrupted; stop the simulation cleanly
		os.Exit(0)
	}
}
