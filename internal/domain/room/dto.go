package room

// CreateRequest for POST /rooms
type CreateRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Capacity int    `json:"capacity" validate:"required,gte=1,lte=100"`
	Category string `json:"category" validate:"room_category"`
}

// UpdateRequest for PUT /rooms/{id}
type UpdateRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Capacity int    `json:"capacity" validate:"required,gte=1,lte=100"`
	Category string `json:"category" validate:"room_category"`
}
