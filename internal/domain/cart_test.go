package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart(t *testing.T) Cart {
	t.Helper()
	cart, err := NewCart([]CartItem{
		{ID: 1, Title: "Tenis de Caminhada", Price: 179.9, Image: "https://example.com/1.jpg", Amount: 2},
		{ID: 2, Title: "Tenis VR Caminhada", Price: 139.9, Image: "https://example.com/2.jpg", Amount: 1},
	})
	require.NoError(t, err)
	return cart
}

func TestNewCart_RejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name  string
		items []CartItem
	}{
		{"zero amount", []CartItem{{ID: 1, Amount: 0}}},
		{"negative amount", []CartItem{{ID: 1, Amount: -1}}},
		{"duplicate id", []CartItem{{ID: 1, Amount: 1}, {ID: 1, Amount: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCart(tt.items)
			assert.ErrorIs(t, err, ErrInvalidCart)
		})
	}
}

func TestCart_WithAmountDoesNotAlias(t *testing.T) {
	cart := sampleCart(t)

	updated := cart.WithAmount(1, 5)

	assert.Equal(t, 2, cart.AmountOf(1))
	assert.Equal(t, 5, updated.AmountOf(1))

	item, ok := updated.Find(1)
	require.True(t, ok)
	assert.Equal(t, "Tenis de Caminhada", item.Title)
}

func TestCart_WithAmountBelowOneDropsLine(t *testing.T) {
	cart := sampleCart(t)

	updated := cart.WithAmount(1, 0)

	_, ok := updated.Find(1)
	assert.False(t, ok)
	assert.Equal(t, 1, updated.Len())
}

func TestCart_ItemsReturnsCopy(t *testing.T) {
	cart := sampleCart(t)

	items := cart.Items()
	items[0].Amount = 99

	assert.Equal(t, 2, cart.AmountOf(1))
}

func TestCart_AppendAndWithoutPreserveOrder(t *testing.T) {
	cart := sampleCart(t)

	cart = cart.Append(CartItem{ID: 3, Title: "Tenis Adidas", Price: 219.9, Amount: 1})
	cart = cart.Without(1)

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, ProductID(2), items[0].ID)
	assert.Equal(t, ProductID(3), items[1].ID)
}

func TestCart_Totals(t *testing.T) {
	cart := sampleCart(t)

	assert.Equal(t, 3, cart.TotalAmount())
	assert.InDelta(t, 179.9*2+139.9, cart.Subtotal(), 0.0001)
	assert.Equal(t, map[ProductID]int{1: 2, 2: 1}, cart.Amounts())
}

func TestCartCodec_RoundTrip(t *testing.T) {
	cart := sampleCart(t)

	data, err := MarshalCart(cart)
	require.NoError(t, err)

	loaded, err := UnmarshalCart(data)
	require.NoError(t, err)
	assert.Equal(t, cart.Items(), loaded.Items())
}

func TestCartCodec_EmptyCart(t *testing.T) {
	data, err := MarshalCart(Cart{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestCartCodec_WireFormat(t *testing.T) {
	cart, err := UnmarshalCart([]byte(`[{"id":42,"title":"Tenis","price":99.5,"image":"img.png","amount":3}]`))
	require.NoError(t, err)

	item, ok := cart.Find(42)
	require.True(t, ok)
	assert.Equal(t, CartItem{ID: 42, Title: "Tenis", Price: 99.5, Image: "img.png", Amount: 3}, item)
}

func TestCartCodec_RejectsCorruptBlob(t *testing.T) {
	_, err := UnmarshalCart([]byte(`{"not":"an array"}`))
	assert.ErrorIs(t, err, ErrInvalidCart)

	_, err = UnmarshalCart([]byte(`[{"id":1,"amount":1},{"id":1,"amount":1}]`))
	assert.ErrorIs(t, err, ErrInvalidCart)
}

func TestCartError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &CartError{Op: OpAdd, Kind: ErrAddFailed, ProductID: 7, Err: cause}

	assert.ErrorIs(t, err, ErrAddFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, "Failed to add product", err.Message())
	assert.Contains(t, err.Error(), "add product 7")
}

func TestCartError_Messages(t *testing.T) {
	tests := []struct {
		err  *CartError
		want string
	}{
		{&CartError{Op: OpAdd, Kind: ErrOutOfStock}, "Requested quantity is out of stock"},
		{&CartError{Op: OpSetAmount, Kind: ErrOutOfStock}, "Requested quantity is out of stock"},
		{&CartError{Op: OpRemove, Kind: ErrItemNotFound}, "Failed to remove product"},
		{&CartError{Op: OpSetAmount, Kind: ErrItemNotFound}, "Failed to update product amount"},
		{&CartError{Op: OpRemove, Kind: ErrPersistenceFailure}, "Failed to save cart"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Message())
	}
}

func TestParseProductID(t *testing.T) {
	id, err := ParseProductID("42")
	require.NoError(t, err)
	assert.Equal(t, ProductID(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := ParseProductID(bad)
		assert.ErrorIs(t, err, ErrInvalidProductID, bad)
	}
}

func TestNewNotification(t *testing.T) {
	n := NewNotification(&CartError{Op: OpAdd, Kind: ErrOutOfStock, ProductID: 42})

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "out_of_stock", n.Kind)
	assert.Equal(t, ProductID(42), n.ProductID)
	assert.Equal(t, "Requested quantity is out of stock", n.Message)
	assert.False(t, n.At.IsZero())
}
