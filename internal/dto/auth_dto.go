package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Usuario      string `json:"usuario"`
	Nombre       string `json:"nombre"`
	Rol          string `json:"rol"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CrearUsuarioRequest struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Password string `json:"password" validate:"required,min=6"`
	Nombre   string `json:"nombre"   validate:"required,min=2,max=120"`
	Rol      string `json:"rol"      validate:"required,oneof=administrador cajero supervisor"`
}

type ActualizarUsuarioRequest struct {
	Password *string `json:"password" validate:"omitempty,min=6"`
	Nombre   *string `json:"nombre"   validate:"omitempty,min=2,max=120"`
	Rol      *string `json:"rol"      validate:"omitempty,oneof=administrador cajero supervisor"`
}
