package integration

// Typed wire payloads for the webhook topics we subscribe to. Decoding
// into these structs happens after signature verification; anything the
// schema cannot express is a validation failure, never a silent skip.

// Topic names as the platform sends them
const (
	TopicProductsCreate        = "products/create"
	TopicProductsUpdate        = "products/update"
	TopicProductsDelete        = "products/delete"
	TopicOrdersCreate          = "orders/create"
	TopicOrdersCancelled       = "orders/cancelled"
	TopicRefundsCreate         = "refunds/create"
	TopicInventoryLevelsUpdate = "inventory_levels/update"
)

type productPayload struct {
	ID          int64            `json:"id"`
	Title       *string          `json:"title"`
	BodyHTML    *string          `json:"body_html"`
	ProductType *string          `json:"product_type"`
	Vendor      *string          `json:"vendor"`
	Status      *string          `json:"status"`
	Variants    []variantPayload `json:"variants"`
}

type variantPayload struct {
	ID              int64    `json:"id"`
	InventoryItemID int64    `json:"inventory_item_id"`
	SKU             *string  `json:"sku"`
	Title           *string  `json:"title"`
	Option1         *string  `json:"option1"`
	Option2         *string  `json:"option2"`
	Option3         *string  `json:"option3"`
	Price           *string  `json:"price"`
	CompareAtPrice  *string  `json:"compare_at_price"`
	Weight          *float64 `json:"weight"`
	WeightUnit      *string  `json:"weight_unit"`
}

type productDeletePayload struct {
	ID int64 `json:"id"`
}

type orderPayload struct {
	ID        int64             `json:"id"`
	LineItems []lineItemPayload `json:"line_items"`
}

type lineItemPayload struct {
	VariantID int64  `json:"variant_id"`
	SKU       string `json:"sku"`
	Quantity  int64  `json:"quantity"`
}

type refundPayload struct {
	ID              int64                   `json:"id"`
	OrderID         int64                   `json:"order_id"`
	RefundLineItems []refundLineItemPayload `json:"refund_line_items"`
}

type refundLineItemPayload struct {
	LineItem    lineItemPayload `json:"line_item"`
	Quantity    int64           `json:"quantity"`
	RestockType string          `json:"restock_type"`
}

type inventoryLevelPayload struct {
	InventoryItemID int64  `json:"inventory_item_id"`
	LocationID      int64  `json:"location_id"`
	Available       *int64 `json:"available"`
}
