package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validProduct() *Product {
	return &Product{
		SellerID: "seller-1",
		Name:     "Widget",
		Price:    500,
		Stock:    10,
	}
}

// ============================================
// Validation Tests
// ============================================

func TestValidate_ValidProduct(t *testing.T) {
	assert.NoError(t, validProduct().Validate())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Product)
	}{
		{"missing seller id", func(p *Product) { p.SellerID = "" }},
		{"missing name", func(p *Product) { p.Name = "" }},
		{"negative price", func(p *Product) { p.Price = -1 }},
		{"negative stock", func(p *Product) { p.Stock = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidInput)
		})
	}
}

func TestValidate_ZeroPriceAndStockAllowed(t *testing.T) {
	p := validProduct()
	p.Price = 0
	p.Stock = 0
	assert.NoError(t, p.Validate())
}

// ============================================
// Update Tests
// ============================================

func TestApply_SetFieldsOnly(t *testing.T) {
	p := validProduct()
	p.Description = "original"

	newName := "Gadget"
	newPrice := 750
	p.Apply(Update{Name: &newName, Price: &newPrice})

	assert.Equal(t, "Gadget", p.Name)
	assert.Equal(t, 750, p.Price)
	// Unset fields are untouched.
	assert.Equal(t, "original", p.Description)
	assert.Equal(t, 10, p.Stock)
}

func TestApply_EmptyUpdateIsNoOp(t *testing.T) {
	p := validProduct()
	before := *p

	p.Apply(Update{})

	assert.Equal(t, before, *p)
}

func TestApply_CanDeactivate(t *testing.T) {
	p := validProduct()
	p.Active = true

	inactive := false
	p.Apply(Update{Active: &inactive})

	assert.False(t, p.Active)
}
