package dto

type TransactionResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url,omitempty"`
}
