package dto

// ProductTransactionRequest is the single-product checkout body accepted on POST /api.
type ProductTransactionRequest struct {
	ID          interface{} `json:"id" validate:"required"`
	ProductName string      `json:"productName" validate:"required"`
	Price       *float64    `json:"price" validate:"required,gt=0"`
	Quantity    *int64      `json:"quantity" validate:"required,gt=0,lte=2147483647"`
}

// ClientTransaction is the backwards-compatible "client" object accepted on
// POST /api/transaction.
type ClientTransaction struct {
	ID          interface{} `json:"id"`
	ProductName string      `json:"productName"`
	Price       float64     `json:"price"`
	Quantity    int64       `json:"quantity"`
}
