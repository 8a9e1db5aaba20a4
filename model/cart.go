package model

// CartItem is one line item in the cart. Price is the display string
// captured when the product was added and is never re-fetched.
type CartItem struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

// WishlistItem is a saved product reference. Presence is all that matters;
// there is no quantity.
type WishlistItem struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Image     string `json:"image,omitempty"`
}

// ToCartItem converts a wishlist entry into a cart row with no quantity yet.
func (w WishlistItem) ToCartItem() CartItem {
	return CartItem{ProductID: w.ProductID, Name: w.Name, Price: w.Price, Image: w.Image}
}
