package db

// Division is a cached entry of the provider's division list, so the last
// fetched list can be shown without hitting the API again.
type Division struct {
	Code         int    `gorm:"primaryKey" json:"code"`
	CustomerName string `json:"customer_name"`
	Description  string `json:"description"`
	Customer     string `json:"customer,omitempty"`
	CustomerCode string `json:"customer_code,omitempty"`
}
