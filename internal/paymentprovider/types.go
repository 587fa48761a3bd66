package paymentprovider

// CreatePaymentLinkRequest описывает запрос на создание hosted payment link
// в DevCraftor. Сумма передаётся в центах.
type CreatePaymentLinkRequest struct {
	Amount        int               `json:"amount"`
	Currency      string            `json:"currency"`
	Description   string            `json:"description"`
	CustomerEmail string            `json:"customer_email"`
	ReturnURL     string            `json:"return_url"`
	WebhookURL    string            `json:"webhook_url"`
	Metadata      map[string]string `json:"metadata"`
}

// CreatePaymentLinkResponse описывает ответ DevCraftor с hosted-ссылкой на оплату.
type CreatePaymentLinkResponse struct {
	PaymentURL string `json:"payment_url"`
}
