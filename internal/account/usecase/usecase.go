package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/account"
	"github.com/fekuna/omnipos-storefront-service/internal/account/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
)

type accountUseCase struct {
	repo      account.Repository
	passwords auth.PasswordVerifier
	logger    logger.ZapLogger
}

func NewAccountUseCase(repo account.Repository, passwords auth.PasswordVerifier, log logger.ZapLogger) account.UseCase {
	return &accountUseCase{
		repo:      repo,
		passwords: passwords,
		logger:    log,
	}
}

func missing(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

func (uc *accountUseCase) SignUpCustomer(ctx context.Context, input *dto.CustomerSignUpInput) (*model.Customer, error) {
	name := strings.TrimSpace(input.AccountName)
	if missing(name, input.Password, input.FirstName, input.LastName) {
		return nil, fmt.Errorf("%w: all fields are required", model.ErrInvalidInput)
	}

	existing, err := uc.repo.FindCustomer(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrAlreadyExists
	}

	hash, err := uc.passwords.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	c := &model.Customer{
		AccountName:  name,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		CreatedAt:    time.Now(),
	}
	if err := uc.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	uc.logger.Info("customer signed up", zap.String("account_name", c.AccountName))
	return c, nil
}

func (uc *accountUseCase) SignUpSupplier(ctx context.Context, input *dto.SupplierSignUpInput) (*model.Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if missing(name, input.Password, input.ContactEmail) {
		return nil, fmt.Errorf("%w: all fields are required", model.ErrInvalidInput)
	}

	existing, err := uc.repo.FindSupplier(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrAlreadyExists
	}

	hash, err := uc.passwords.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	s := &model.Supplier{
		Name:         name,
		PasswordHash: hash,
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		CreatedAt:    time.Now(),
	}
	if err := uc.repo.CreateSupplier(ctx, s); err != nil {
		return nil, err
	}

	uc.logger.Info("supplier signed up", zap.String("supplier", s.Name))
	return s, nil
}

func (uc *accountUseCase) LoginCustomer(ctx context.Context, accountName, password string) (*model.Customer, error) {
	c, err := uc.repo.FindCustomer(ctx, strings.TrimSpace(accountName))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.ErrUnknownAccount
	}
	if err := uc.verify(c.PasswordHash, password); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *accountUseCase) LoginSupplier(ctx context.Context, name, password string) (*model.Supplier, error) {
	s, err := uc.repo.FindSupplier(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, model.ErrUnknownAccount
	}
	if err := uc.verify(s.PasswordHash, password); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *accountUseCase) verify(hash, password string) error {
	err := uc.passwords.Verify(hash, password)
	if errors.Is(err, auth.ErrPasswordMismatch) {
		return model.ErrWrongPassword
	}
	return err
}
