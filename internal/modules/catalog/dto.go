package catalog

type CreateServiceRequest struct {
	Name              string  `json:"name" binding:"required"`
	Description       string  `json:"description"`
	Category          string  `json:"category" binding:"required"`
	BasePrice         float64 `json:"basePrice" binding:"required"`
	EstimatedDuration *int    `json:"estimatedDuration"`
	IsActive          *bool   `json:"isActive"`
}

type UpdateServiceRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Category          *string  `json:"category"`
	BasePrice         *float64 `json:"basePrice"`
	EstimatedDuration *int     `json:"estimatedDuration"`
	IsActive          *bool    `json:"isActive"`
}

type ListQuery struct {
	Category string
	IsActive *bool
	Search   string
	Page     int
	Limit    int
}
