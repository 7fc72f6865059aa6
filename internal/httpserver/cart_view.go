package httpserver

import (
	cartsvc "storefront/internal/service/cart"
)

type cartView struct {
	Items               []cartItemView `json:"items"`
	TotalItems          int            `json:"totalItems"`
	TotalPrice          string         `json:"totalPrice"`
	NotificationVisible bool           `json:"notificationVisible"`
	Version             uint64         `json:"version"`
}

type cartItemView struct {
	Product  productView `json:"product"`
	Quantity int         `json:"quantity"`
	Subtotal string      `json:"subtotal"`
}

// toCartView is where money gets rounded: two decimals, for display only.
func toCartView(s cartsvc.Snapshot) cartView {
	items := make([]cartItemView, 0, len(s.Entries))
	for _, e := range s.Entries {
		items = append(items, cartItemView{
			Product:  toProductView(e.Product),
			Quantity: e.Quantity,
			Subtotal: e.Subtotal().StringFixed(2),
		})
	}
	return cartView{
		Items:               items,
		TotalItems:          s.TotalItems,
		TotalPrice:          s.TotalPrice.StringFixed(2),
		NotificationVisible: s.NotificationVisible,
		Version:             s.Version,
	}
}
