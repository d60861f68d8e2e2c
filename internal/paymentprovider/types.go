// Package paymentprovider реализует клиент REST API Stripe:
// создание checkout- и portal-сессий, чтение подписки и проверку
// подписи webhook-уведомлений.
package paymentprovider

import "encoding/json"

// CheckoutSession ответ провайдера при создании checkout-сессии.
type CheckoutSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	ClientReferenceID string `json:"client_reference_id"`
	Customer          string `json:"customer"`
	Subscription      string `json:"subscription"`
}

// PortalSession ответ провайдера при создании portal-сессии.
type PortalSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Subscription снимок подписки у провайдера.
//
// Тариф выводится из идентификатора цены первой позиции.
type Subscription struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"` // unix-время
	Items             struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// PriceID возвращает идентификатор цены подписки, пустую строку если позиций нет.
func (s *Subscription) PriceID() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	return s.Items.Data[0].Price.ID
}

// Event webhook-уведомление провайдера.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}
