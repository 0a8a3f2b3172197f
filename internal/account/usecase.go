package account

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/account/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type UseCase interface {
	SignUpCustomer(ctx context.Context, input *dto.CustomerSignUpInput) (*model.Customer, error)
	SignUpSupplier(ctx context.Context, input *dto.SupplierSignUpInput) (*model.Supplier, error)
	LoginCustomer(ctx context.Context, accountName, password string) (*model.Customer, error)
	LoginSupplier(ctx context.Context, name, password string) (*model.Supplier, error)
}
