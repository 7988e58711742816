package main

import (
	"context"

	"github.com/ofertaeducativa/catalogo/core/auth"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	rp := auth.ResetUserPassword{Email: email, Password: pwd}
	if err := rp.Validate(cli.validate, cli.translator); err != nil {
		return err
	}
	return cli.usrSvc.ResetPassword(context.Background(), rp)
}
