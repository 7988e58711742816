package main

import (
	"context"
	"fmt"

	"github.com/ofertaeducativa/catalogo/core/auth"
)

// addUser creates an admin auth.User for the institution `institutionID`.
func (cli *commandLine) addUser(email, pwd string, institutionID int64) error {
	nu := auth.NewUser{
		Email:         email,
		Password:      pwd,
		InstitutionID: institutionID,
	}
	if err := nu.Validate(cli.validate, cli.translator); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Printf("user %q created for %q\n", usr.Email, usr.InstitutionName)
	return nil
}
