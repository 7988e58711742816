package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/auth"
	"github.com/ofertaeducativa/catalogo/core/catalog"
	logsvc "github.com/ofertaeducativa/catalogo/services/logger"
	"github.com/ofertaeducativa/catalogo/storage/database"
	sqlxrepos "github.com/ofertaeducativa/catalogo/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()

	zapLogger, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	rLogger := logsvc.NewRollbarLogger(zapLogger.Named("admin"), conf)
	rLogger.Enable(false)
	logger = rLogger

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	auth.InitValidators(validate, translator)

	catalogRepo := sqlxrepos.NewCatalogRepository(db)

	// start CLI
	cli := commandLine{
		db:          db,
		engine:      conf.Database.Engine,
		catalogRepo: catalogRepo,
		usrSvc:      auth.NewService(sqlxrepos.NewUserRepository(db), catalogRepo),
		validate:    validate,
		translator:  translator,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	rLogger.Sync()
	if err != nil {
		if err != errHelp {
			printError(err)
		}
		os.Exit(1)
	}
}

// printError shows every invalid field of validation errors.
func printError(err error) {
	if vErr, ok := err.(*core.ValidationError); ok && len(vErr.Fields) > 0 {
		fmt.Println("\nerror:")
		for _, fld := range vErr.Fields {
			fmt.Printf("  %s: %s\n", fld.Field, fld.Error)
		}
		return
	}
	logger.Error(fmt.Sprintf("\nerror: %s", err), err)
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
