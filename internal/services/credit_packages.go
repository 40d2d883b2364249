package services

import "github.com/bhavisyaji/backend/internal/models"

var defaultCreditPackages = []models.CreditPackage{
	{
		ID:          "micro-pack",
		Name:        "Micro Pack",
		Price:       99,
		Credits:     10,
		Description: "Perfect for trying out our services",
		PaymentLink: "https://rzp.io/rzp/lyrWd9VS",
	},
	{
		ID:          "standard-pack",
		Name:        "Standard Pack",
		Price:       499,
		Credits:     60,
		Description: "Most popular choice for regular users",
		PaymentLink: "https://rzp.io/rzp/5fNpWpos",
	},
	{
		ID:          "value-pack",
		Name:        "Value Pack",
		Price:       999,
		Credits:     150,
		Description: "Best value for frequent users",
		PaymentLink: "https://rzp.io/rzp/RGpR3z9z",
	},
}

// PackageCatalog is the fixed list of purchasable credit packages.
type PackageCatalog struct {
	packages []models.CreditPackage
}

func NewPackageCatalog(packages ...models.CreditPackage) *PackageCatalog {
	if len(packages) == 0 {
		packages = defaultCreditPackages
	}
	return &PackageCatalog{packages: append([]models.CreditPackage(nil), packages...)}
}

func (c *PackageCatalog) List() []models.CreditPackage {
	return append([]models.CreditPackage(nil), c.packages...)
}

func (c *PackageCatalog) Get(id string) (models.CreditPackage, error) {
	for _, p := range c.packages {
		if p.ID == id {
			return p, nil
		}
	}
	return models.CreditPackage{}, ErrPackageNotFound
}

// ForAmount finds the package priced at amount minor units.
func (c *PackageCatalog) ForAmount(amount int64) (models.CreditPackage, error) {
	for _, p := range c.packages {
		if p.AmountMinorUnits() == amount {
			return p, nil
		}
	}
	return models.CreditPackage{}, ErrPackageNotFound
}
