package models

// CartLine is one menu item in a customer's cart. UnitPriceSnapshot is the price
// shown when the item was added and is never used to charge.
type CartLine struct {
	MenuItemID        uint   `json:"menuItemId"`
	Name              string `json:"name,omitempty"`
	Quantity          int    `json:"quantity"`
	UnitPriceSnapshot Money  `json:"unitPriceSnapshot"`
}

// LineRequest identifies an item and quantity requested at checkout.
type LineRequest struct {
	MenuItemID uint `json:"menuItemId" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1,max=99"`
}
