package entity

import "github.com/ecopanier/backend/pkg/enum"

type UserRole string

var (
	RoleMerchant    = enum.New(UserRole("merchant"))
	RoleCustomer    = enum.New(UserRole("customer"))
	RoleBeneficiary = enum.New(UserRole("beneficiary"))
)

type User struct {
	Base

	Name string
	Role UserRole
}
