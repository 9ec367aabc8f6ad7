package models_test

import (
	"testing"

	"order-service/models"

	"github.com/stretchr/testify/assert"
)

func TestOrderCancellable(t *testing.T) {
	cases := []struct {
		status models.OrderStatus
		want   bool
	}{
		{models.OrderStatusProcessing, true},
		{models.OrderStatusShipped, true},
		{models.OrderStatusDelivered, false},
		{models.OrderStatusCancelled, false},
		{models.OrderStatusReturned, false},
	}
	for _, tc := range cases {
		order := &models.Order{OrderStatus: tc.status}
		assert.Equal(t, tc.want, order.Cancellable(), "status %s", tc.status)
	}
}

func TestShippingAddressMissingFields(t *testing.T) {
	full := models.ShippingAddress{
		FullName:     "Asha Kumar",
		AddressLine1: "12 Hill Road",
		City:         "Mumbai",
		State:        "MH",
		PostalCode:   "400050",
	}
	assert.Empty(t, full.MissingFields())

	partial := models.ShippingAddress{FullName: "Asha Kumar", City: "Mumbai"}
	assert.ElementsMatch(t, []string{"addressLine1", "state", "postalCode"}, partial.MissingFields())
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, models.OrderStatusShipped.Valid())
	assert.False(t, models.OrderStatus("Lost").Valid())

	assert.True(t, models.PaymentStatusRefunded.Valid())
	assert.False(t, models.PaymentStatus("Disputed").Valid())

	assert.True(t, models.CancelReasonMistake.Valid())
	assert.False(t, models.CancelReason("Because").Valid())
}

func TestEffectivePrice(t *testing.T) {
	discount := 40.0
	p := &models.Product{Price: 50, DiscountPrice: &discount}
	assert.Equal(t, 40.0, p.EffectivePrice())

	zero := 0.0
	p = &models.Product{Price: 50, DiscountPrice: &zero}
	assert.Equal(t, 50.0, p.EffectivePrice())

	p = &models.Product{Price: 50}
	assert.Equal(t, 50.0, p.EffectivePrice())
}

func TestProductSnapshotUsesVariation(t *testing.T) {
	discount := 55.0
	p := &models.Product{
		Name:  "Dog Food",
		Price: 100,
		Variations: []models.Variation{
			{Name: "5 kg", Price: 60, DiscountPrice: &discount},
		},
	}
	snap := p.Snapshot(&p.Variations[0])
	assert.Equal(t, "Dog Food", snap.Name)
	assert.Equal(t, "5 kg", snap.VariationName)
	assert.Equal(t, 60.0, snap.Price)
	assert.Equal(t, 55.0, *snap.DiscountPrice)
}
