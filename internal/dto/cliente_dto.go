package dto

type CrearClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=120"`
	Documento string  `json:"documento" validate:"required,min=5,max=20"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=20"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion" validate:"omitempty,max=200"`
}

type ActualizarClienteRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=120"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=20"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion" validate:"omitempty,max=200"`
}
