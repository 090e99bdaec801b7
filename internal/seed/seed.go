package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	organizationdomain "github.com/harborlane/ledgerdesk/internal/organization/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName     = "Main"
	defaultBankName    = "First Harbor Bank"
	defaultAccountName = "Main Operating"
)

// EnsureDefaults seeds the default organization and bank detail so freshly
// created clients and rendered invoices have something to point at.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOrganizationTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureBankDetailTx(ctx, tx, node)
	})
}

func ensureOrganizationTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("name = ?", defaultOrgName).First(&org).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	return tx.WithContext(ctx).Create(&organizationdomain.Organization{
		ID:        node.Generate(),
		Name:      defaultOrgName,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}

func ensureBankDetailTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var bank organizationdomain.BankDetail
	err := tx.WithContext(ctx).Where("bank_name = ?", defaultBankName).First(&bank).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	return tx.WithContext(ctx).Create(&organizationdomain.BankDetail{
		ID:            node.Generate(),
		BankName:      defaultBankName,
		AccountName:   defaultAccountName,
		AccountNumber: "000000000",
		CreatedAt:     now,
		UpdatedAt:     now,
	}).Error
}
