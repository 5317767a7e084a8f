package handler

// credentialsForm is posted by the login and registration pages.
type credentialsForm struct {
	Username string `form:"username" validate:"required,max=64"`
	Password string `form:"password" validate:"required,max=72"`
}

// newClientForm carries the text fields of /nuevo_cliente. The three files
// are read separately from the multipart form.
type newClientForm struct {
	FirstName      string `form:"nombre"        validate:"required,max=100"`
	LastName       string `form:"apellido"      validate:"required,max=100"`
	Phone          string `form:"telefono"      validate:"max=30"`
	Address        string `form:"direccion"     validate:"max=255"`
	GuarantorName  string `form:"aval"          validate:"max=100"`
	GuarantorPhone string `form:"telefono_aval" validate:"max=30"`
	Principal      string `form:"prestamo"      validate:"required"`
}

// termsForm is posted by /metodos_pago/:id/:prestamo.
type termsForm struct {
	TermMonths int `form:"meses"    validate:"required"`
	DueDay     int `form:"dia_pago" validate:"required,gte=1,lte=31"`
}

// paymentForm is posted from the dashboard.
type paymentForm struct {
	ClientID string `form:"id_cliente"   validate:"required"`
	Amount   string `form:"monto_pagado" validate:"required"`
}

// Multipart field names of the three required documents.
const (
	fileClientID       = "credencial_cliente"
	fileGuarantorID    = "credencial_aval"
	fileProofOfAddress = "comprobante_domicilio"
)
