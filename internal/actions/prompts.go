package actions

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// promptTitle asks the operator to confirm or edit the pull request title
var promptTitle = func(defaultTitle string) (string, error) {
	var title string
	prompt := &survey.Input{
		Message: "Title:",
		Default: defaultTitle,
	}
	if err := survey.AskOne(prompt, &title, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}
