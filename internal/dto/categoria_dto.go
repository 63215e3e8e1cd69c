package dto

type CategoriaRequest struct {
	Nombre      string  `json:"nombre"      validate:"required,min=2,max=80"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=200"`
}
