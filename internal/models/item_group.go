package models

// Contribution records how many units of a grouped item came from one
// order, so a group can always be traced back to its orders.
type Contribution struct {
	OrderID      string `json:"orderId"`
	OrderNumber  string `json:"orderNumber"`
	CustomerName string `json:"customerName"`
	Quantity     int    `json:"quantity"`
}

// ItemGroup is the aggregation of identical items across orders, keyed
// by the canonical item key.
type ItemGroup struct {
	Key              string         `json:"key"`
	Name             string         `json:"name"`
	FullName         string         `json:"fullName"`
	Size             string         `json:"size"`
	Category         string         `json:"category"`
	SubCategory      string         `json:"subCategory,omitempty"`
	ProteinType      string         `json:"proteinType,omitempty"`
	Sauce            string         `json:"sauce,omitempty"`
	RiceSubstitution string         `json:"riceSubstitution,omitempty"`
	TotalQuantity    int            `json:"totalQuantity"`
	BatchQuantity    int            `json:"batchQuantity"`
	Contributors     []Contribution `json:"contributors"`
}
