package service

import (
	"context"
	"testing"

	"marketplace-service/internal/models"
	"marketplace-service/internal/store/memory"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    *memory.Store
	catalog  *CatalogService
	cart     *CartService
	ledger   *OrderLedger
	checkout *CheckoutService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := memory.NewStore()
	guard := NewInventoryGuard(st, nil)
	catalog := NewCatalogService(st, guard, nil, testURI)
	cart := NewCartService(st, catalog)
	ledger := NewOrderLedger(st)
	checkout := NewCheckoutService(st, cart, catalog, ledger, nil)
	users := NewUserService(st)

	return &testEnv{
		store:    st,
		catalog:  catalog,
		cart:     cart,
		ledger:   ledger,
		checkout: checkout,
		users:    users,
	}
}

func testURI(productID string) string {
	return "http://localhost:8080/marketplace/api/product/" + productID
}

func (e *testEnv) addProduct(t *testing.T, title string, price float64, inventory int) *models.Product {
	t.Helper()
	product, err := e.catalog.Add(context.Background(), title, price, inventory)
	require.NoError(t, err)
	return product
}

func (e *testEnv) addUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Cart:         []string{},
	}
	require.NoError(t, e.store.InsertUser(context.Background(), user))
	return user
}
