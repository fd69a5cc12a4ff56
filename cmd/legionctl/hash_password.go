package main

import (
	"errors"
	"fmt"
	"os"

	"shelleylegion/services"

	"github.com/AlecAivazis/survey/v2"
)

const minPasswordLength = 8

type hashPasswordCmd struct {
	Password string `arg:"" optional:"" help:"Password to hash. Prompted for when omitted."`
}

func (h *hashPasswordCmd) Run(g *globalCmd) error {
	password := h.Password
	if password == "" {
		var err error
		if password, err = promptPassword(); err != nil {
			return err
		}
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "ADMIN_PASSWORD_HASH=%s\n", hash)
	return nil
}

func promptPassword() (string, error) {
	var password, confirm string
	q1 := &survey.Password{Message: "Admin password:"}
	err := survey.AskOne(q1, &password, survey.WithValidator(survey.MinLength(minPasswordLength)))
	if err != nil {
		return "", err
	}
	q2 := &survey.Password{Message: "Repeat password:"}
	if err := survey.AskOne(q2, &confirm); err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}
