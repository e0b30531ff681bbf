package product

// CreateProductRequest mirrors the multipart form the backend accepts on
// POST /api/products. Image travels separately as a file part.
type CreateProductRequest struct {
	Name           string  `form:"name" json:"name" validate:"required,max=120"`
	CropType       string  `form:"cropType" json:"cropType" validate:"required,max=80"`
	SoilType       string  `form:"soilType" json:"soilType,omitempty" validate:"omitempty,max=80"`
	Pesticides     string  `form:"pesticides" json:"pesticides,omitempty" validate:"omitempty,max=200"`
	HarvestDate    string  `form:"harvestDate" json:"harvestDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	UseBeforeDate  string  `form:"useBeforeDate" json:"useBeforeDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Location       string  `form:"location" json:"location,omitempty" validate:"omitempty,max=120"`
	AdditionalInfo string  `form:"additionalInfo" json:"additionalInfo,omitempty" validate:"omitempty,max=1000"`
	Price          float64 `form:"price" json:"price" validate:"gt=0"`
	Quantity       int     `form:"quantity" json:"quantity" validate:"gt=0"`
}

// Fields flattens the request into multipart form fields, skipping empties.
func (r CreateProductRequest) Fields() map[string]string {
	out := map[string]string{
		"name":     r.Name,
		"cropType": r.CropType,
		"price":    formatFloat(r.Price),
		"quantity": formatInt(r.Quantity),
	}

	optional := map[string]string{
		"soilType":       r.SoilType,
		"pesticides":     r.Pesticides,
		"harvestDate":    r.HarvestDate,
		"useBeforeDate":  r.UseBeforeDate,
		"location":       r.Location,
		"additionalInfo": r.AdditionalInfo,
	}
	for k, v := range optional {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

type UpdateProductRequest struct {
	Name           string   `json:"name" binding:"required,max=120"`
	CropType       string   `json:"cropType" binding:"required,max=80"`
	SoilType       string   `json:"soilType,omitempty" binding:"omitempty,max=80"`
	Pesticides     string   `json:"pesticides,omitempty" binding:"omitempty,max=200"`
	HarvestDate    string   `json:"harvestDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
	UseBeforeDate  string   `json:"useBeforeDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Location       string   `json:"location,omitempty" binding:"omitempty,max=120"`
	AdditionalInfo string   `json:"additionalInfo,omitempty" binding:"omitempty,max=1000"`
	Price          *float64 `json:"price" binding:"required,gt=0"`
	Quantity       *int     `json:"quantity" binding:"required,gte=0"`
}
