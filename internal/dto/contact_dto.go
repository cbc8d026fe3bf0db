package dto

type ContactFormRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Company string `json:"company" validate:"max=255"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}
