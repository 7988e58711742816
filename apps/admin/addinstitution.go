package main

import (
	"context"
	"fmt"

	"github.com/ofertaeducativa/catalogo/core"
	"github.com/ofertaeducativa/catalogo/core/catalog"
)

// addInstitution creates a catalog.Institution and prints its id, needed by adduser.
func (cli *commandLine) addInstitution(inst catalog.Institution) error {
	inst.Name = core.CleanString(inst.Name)
	inst.Address = core.CleanString(inst.Address)
	inst.Phone = core.CleanString(inst.Phone)
	inst.Email = core.CleanString(inst.Email, true /* lower */)
	inst.Web = core.CleanString(inst.Web)

	inst, err := cli.catalogRepo.CreateInstitution(context.Background(), inst)
	if err != nil {
		return err
	}
	fmt.Printf("institution %q created with id %d\n", inst.Name, inst.ID)
	return nil
}
