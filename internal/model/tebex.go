package model

// Types for the Tebex payments API (GET /payments/{transactionId}).

type TebexCurrency struct {
	ISO4217 string `json:"iso_4217"`
	Symbol  string `json:"symbol"`
}

const (
	TebexStatusComplete   = "Complete"
	TebexStatusRefund     = "Refund"
	TebexStatusChargeback = "Chargeback"
)

type TebexPlayer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

type TebexPackage struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type TebexPayment struct {
	ID       int64          `json:"id"`
	Amount   string         `json:"amount"`
	Date     string         `json:"date"`
	Status   string         `json:"status"`
	Currency TebexCurrency  `json:"currency"`
	Email    string         `json:"email"`
	Player   TebexPlayer    `json:"player"`
	Packages []TebexPackage `json:"packages"`
}

// PurchasePayload is the structured notification posted by the storefront,
// either as a message in the payment log channel or to the webhook endpoint.
type PurchasePayload struct {
	Action        string `json:"action"` // purchase, refund or chargeback
	Username      string `json:"username"`
	Price         string `json:"price"`
	Transaction   string `json:"transaction"`
	PackageName   string `json:"packageName"`
	Time          string `json:"time"`
	Date          string `json:"date"`
	Email         string `json:"email"`
	PurchaserName string `json:"purchaserName"`
	PurchaserUUID string `json:"purchaserUuid"`
	Server        string `json:"server"`
	DiscordID     string `json:"discordId"`
	Timestamp     int64  `json:"timestamp"`
}

const (
	ActionPurchase   = "purchase"
	ActionRefund     = "refund"
	ActionChargeback = "chargeback"
)
