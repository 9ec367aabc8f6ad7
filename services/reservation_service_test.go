package services_test

import (
	"context"
	"sync"
	"testing"

	"order-service/models"
	"order-service/repository"
	"order-service/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func floatPtr(v float64) *float64 { return &v }

func TestComputeTotals_BelowFreeShippingThreshold(t *testing.T) {
	totals := services.ComputeTotals([]models.CheckoutLine{
		{Quantity: 2, Price: 40, Subtotal: 80},
	})

	assert.Equal(t, 80.0, totals.Subtotal)
	assert.Equal(t, 8.0, totals.TaxAmount)
	assert.Equal(t, 5.0, totals.ShippingFee)
	assert.Equal(t, 93.0, totals.TotalAmount)
}

func TestComputeTotals_FreeShippingAboveThreshold(t *testing.T) {
	totals := services.ComputeTotals([]models.CheckoutLine{
		{Quantity: 1, Price: 150, Subtotal: 150},
	})

	assert.Equal(t, 150.0, totals.Subtotal)
	assert.Equal(t, 15.0, totals.TaxAmount)
	assert.Equal(t, 0.0, totals.ShippingFee)
	assert.Equal(t, 165.0, totals.TotalAmount)
}

func TestComputeTotals_RoundsToCents(t *testing.T) {
	totals := services.ComputeTotals([]models.CheckoutLine{
		{Quantity: 3, Price: 33.33, Subtotal: 99.99},
	})

	assert.Equal(t, 99.99, totals.Subtotal)
	assert.Equal(t, 10.0, totals.TaxAmount)
	assert.Equal(t, 5.0, totals.ShippingFee)
	assert.Equal(t, 114.99, totals.TotalAmount)
}

func TestReserve_DecrementsStockAndPricesLines(t *testing.T) {
	store := newMockStore()
	product := store.addProduct(&models.Product{
		Name:          "Salmon Kibble",
		Price:         50,
		DiscountPrice: floatPtr(40),
		Stock:         10,
		Active:        true,
	})

	svc := services.NewReservationService(zap.NewNop())
	var lines []models.CheckoutLine
	err := store.Transaction(context.Background(), func(tx repository.Store) error {
		var err error
		lines, err = svc.Reserve(context.Background(), tx, []models.CartItem{
			{ProductID: product.ID, Quantity: 2},
		})
		return err
	})

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 40.0, lines[0].Price)
	assert.Equal(t, 80.0, lines[0].Subtotal)
	assert.Equal(t, "Salmon Kibble", lines[0].ProductSnapshot.Name)
	assert.Equal(t, 8, store.productStock(product.ID, nil))
}

func TestReserve_VariationStock(t *testing.T) {
	store := newMockStore()
	product := store.addProduct(&models.Product{
		Name:          "Dog Food",
		Price:         100,
		Stock:         0,
		HasVariations: true,
		Active:        true,
		Variations: []models.Variation{
			{Name: "5 kg", Price: 60, Stock: 4},
		},
	})
	variationID := product.Variations[0].ID

	svc := services.NewReservationService(zap.NewNop())
	var lines []models.CheckoutLine
	err := store.Transaction(context.Background(), func(tx repository.Store) error {
		var err error
		lines, err = svc.Reserve(context.Background(), tx, []models.CartItem{
			{ProductID: product.ID, VariationID: &variationID, Quantity: 3},
		})
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 60.0, lines[0].Price)
	assert.Equal(t, "5 kg", lines[0].ProductSnapshot.VariationName)
	assert.Equal(t, 1, store.productStock(product.ID, &variationID))
}

func TestReserve_VariationRequired(t *testing.T) {
	store := newMockStore()
	product := store.addProduct(&models.Product{
		Name:          "Dog Food",
		Price:         100,
		HasVariations: true,
		Active:        true,
		Variations:    []models.Variation{{Name: "5 kg", Price: 60, Stock: 4}},
	})

	svc := services.NewReservationService(zap.NewNop())
	err := store.Transaction(context.Background(), func(tx repository.Store) error {
		_, err := svc.Reserve(context.Background(), tx, []models.CartItem{
			{ProductID: product.ID, Quantity: 1},
		})
		return err
	})

	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestReserve_VariationIDOnVariationlessProduct(t *testing.T) {
	store := newMockStore()
	product := store.addProduct(&models.Product{Name: "Dog Food", Price: 100, Stock: 5, Active: true})
	staleVariation := uuid.New()

	svc := services.NewReservationService(zap.NewNop())
	err := store.Transaction(context.Background(), func(tx repository.Store) error {
		_, err := svc.Reserve(context.Background(), tx, []models.CartItem{
			{ProductID: product.ID, VariationID: &staleVariation, Quantity: 1},
		})
		return err
	})

	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
	assert.Contains(t, svcErr.Message, "Dog Food")
	assert.Equal(t, 5, store.productStock(product.ID, nil))
}

func TestReserve_InactiveProductRejected(t *testing.T) {
	store := newMockStore()
	product := store.addProduct(&models.Product{Name: "Old Toy", Price: 10, Stock: 5, Active: false})

	svc := services.NewReservationService(zap.NewNop())
	err := store.Transaction(context.Background(), func(tx repository.Store) error {
		_, err := svc.Reserve(context.Background(), tx, []models.CartItem{
			{ProductID: product.ID, Quantity: 1},
		})
		return err
	})

	var svcErr *services.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestReserve_ReportsEveryShortfallAtOnce(t *testing.T) {
	store := newMockStore()
	p1 := store.addProduct(&models.Product{Name: "Leash", Price: 20, Stock: 1, Active: true})
	p2 := store.addProduct(&models.Product{Name: "Collar", Price: 15, Stock: 0, Active: true})
	p3 := store.addProduct(&models.Product{Name: "Bowl", Price: 10, Stock: 50, Active: true})

	svc := services.NewReservationService(zap.NewNop())
	err := store.Transaction(context.Background(), func(tx repository.Store) error {
		_, err := svc.Reserve(context.Background(), tx, []models.CartItem{
			{ProductID: p1.ID, Quantity: 3},
			{ProductID: p2.ID, Quantity: 1},
			{ProductID: p3.ID, Quantity: 2},
		})
		return err
	})

	var oos *services.OutOfStockError
	require.ErrorAs(t, err, &oos)
	require.Len(t, oos.Items, 2)

	// nothing was reserved, the in-stock line included
	assert.Equal(t, 1, store.productStock(p1.ID, nil))
	assert.Equal(t, 0, store.productStock(p2.ID, nil))
	assert.Equal(t, 50, store.productStock(p3.ID, nil))
}

func TestReserve_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	store := newMockStore()
	product := store.addProduct(&models.Product{Name: "Treats", Price: 5, Stock: 5, Active: true})

	svc := services.NewReservationService(zap.NewNop())

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Transaction(context.Background(), func(tx repository.Store) error {
				_, err := svc.Reserve(context.Background(), tx, []models.CartItem{
					{ProductID: product.ID, Quantity: 1},
				})
				return err
			})
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			var oos *services.OutOfStockError
			require.ErrorAs(t, err, &oos)
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, store.productStock(product.ID, nil))
}

func TestRestore_ReturnsStock(t *testing.T) {
	store := newMockStore()
	product := store.addProduct(&models.Product{Name: "Treats", Price: 5, Stock: 3, Active: true})

	svc := services.NewReservationService(zap.NewNop())
	var lines []models.CheckoutLine
	err := store.Transaction(context.Background(), func(tx repository.Store) error {
		var err error
		lines, err = svc.Reserve(context.Background(), tx, []models.CartItem{
			{ProductID: product.ID, Quantity: 3},
		})
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 0, store.productStock(product.ID, nil))

	err = store.Transaction(context.Background(), func(tx repository.Store) error {
		return svc.Restore(context.Background(), tx, lines)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, store.productStock(product.ID, nil))
}

func TestRestore_SkipsDeletedProducts(t *testing.T) {
	store := newMockStore()
	svc := services.NewReservationService(zap.NewNop())

	err := store.Transaction(context.Background(), func(tx repository.Store) error {
		return svc.Restore(context.Background(), tx, []models.CheckoutLine{
			{ProductID: uuid.New(), Quantity: 2},
		})
	})
	assert.NoError(t, err)
}
