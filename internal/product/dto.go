package product

// CreateProductRequest payload for product creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name        string   `json:"name"        validate:"required"        example:"حناء برغند الفاخرة"`
	Category    string   `json:"category"    validate:"required"        example:"حناء بودر"`
	Subcategory string   `json:"subcategory"                            example:"وسط"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price"       validate:"required,gt=0"   example:"4.5"`
	OldPrice    float64  `json:"oldPrice"    validate:"omitempty,gte=0"`
	Images      []string `json:"image"       validate:"required,min=1,dive,required"`
	Author      string   `json:"author"      validate:"required"`
}
