package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/ofertaeducativa/catalogo/core/auth"
	"github.com/ofertaeducativa/catalogo/core/catalog"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp             = errors.New("help provided")
	errPasswordMismatch = errors.New("passwords do not match")
)

type commandLine struct {
	db          *sqlx.DB
	engine      string
	catalogRepo catalog.Repository
	usrSvc      *auth.Service
	validate    *validator.Validate
	translator  ut.Translator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  addinstitution -nombre NAME [-direccion ADDRESS] [-telefono PHONE] [-email EMAIL] [-web URL] - add an institution")
	fmt.Println("  adduser -email EMAIL -institucion ID - add an institution admin; the password is prompted next")
	fmt.Println("  resetpassword -email EMAIL - reset a user's password; the password is prompted next")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addInstCmd := flag.NewFlagSet("addinstitution", flag.ContinueOnError)
	addInstName := addInstCmd.String("nombre", "", "The institution's display name.")
	addInstAddress := addInstCmd.String("direccion", "", "The institution's address.")
	addInstPhone := addInstCmd.String("telefono", "", "The institution's phone number.")
	addInstEmail := addInstCmd.String("email", "", "The institution's contact email.")
	addInstWeb := addInstCmd.String("web", "", "The institution's website.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserInst := addUserCmd.Int64("institucion", 0, "The id of the institution the user administers.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			fmt.Println("Usage: migrate COMMAND [ARGS]")
			return errHelp
		}
		return cli.migrate(args[2:])

	case "addinstitution":
		if err := parseFlags(addInstCmd, args[2:]); err != nil {
			return err
		}
		if *addInstName == "" {
			addInstCmd.Usage()
			return errHelp
		}
		return cli.addInstitution(catalog.Institution{
			Name:    *addInstName,
			Address: *addInstAddress,
			Phone:   *addInstPhone,
			Email:   *addInstEmail,
			Web:     *addInstWeb,
		})

	case "adduser":
		if err := parseFlags(addUserCmd, args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserInst == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(true)
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, pwd, *addUserInst)

	case "resetpassword":
		if err := parseFlags(resetPasswordCmd, args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(true)
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

func parseFlags(cmd *flag.FlagSet, args []string) error {
	if err := cmd.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func promptPassword(confirm bool) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if !confirm || len(pwd) == 0 {
		return string(pwd), nil
	}

	fmt.Print("Confirm password:")
	again, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if string(again) != string(pwd) {
		return "", errPasswordMismatch
	}
	return string(pwd), nil
}
