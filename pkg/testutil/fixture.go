package testutil

import (
	"context"

	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/pkg/xcontext"
)

var (
	Merchant1 = entity.User{
		Base: entity.Base{ID: "merchant1"},
		Name: "Merchant One",
		Role: entity.RoleMerchant,
	}

	Customer1 = entity.User{
		Base: entity.Base{ID: "customer1"},
		Name: "Customer One",
		Role: entity.RoleCustomer,
	}

	Beneficiary1 = entity.User{
		Base: entity.Base{ID: "beneficiary1"},
		Name: "Beneficiary One",
		Role: entity.RoleBeneficiary,
	}
)

func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
}

// InsertUsers writes the fixture users with the raw db handle; going through
// the repositories here would make testutil import the packages it serves.
func InsertUsers(ctx context.Context) {
	for _, user := range []entity.User{Merchant1, Customer1, Beneficiary1} {
		user := user
		if err := xcontext.DB(ctx).Create(&user).Error; err != nil {
			panic(err)
		}
	}
}
