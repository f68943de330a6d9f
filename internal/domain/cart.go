package domain

// Cart принадлежит ровно одному пользователю. Содержимое живет в cart_item;
// позиция ссылается на опцию товара (product_option) и желаемое количество.
type Cart struct {
	ID     string `json:"cartId"`
	UserID string `json:"userId"`
}

// CartItem — позиция корзины. Amount проверяется против остатка при добавлении,
// но резервирование не происходит: склад списывается только при settlement.
type CartItem struct {
	OptionID int64
	Amount   int
}

// CartProduct — товар внутри представления корзины со сгруппированными опциями.
type CartProduct struct {
	ProductID int64     `json:"productId"`
	Options   OptionSet `json:"options"`
}

// CartView — корзина с содержимым для выдачи наружу.
type CartView struct {
	CartID   string        `json:"cartId"`
	UserID   string        `json:"userId"`
	Products []CartProduct `json:"products"`
}
