package domain

// SyncRequest optionally carries the cloud bearer token for one run.
type SyncRequest struct {
	Token string `json:"token,omitempty"`
}

// ConnectRequest links the service to a cloud account.
type ConnectRequest struct {
	AccessToken string `json:"accessToken" validate:"required"`
	// IDToken is the OpenID token returned alongside the access token; its
	// email claim names the connected account.
	IDToken  string `json:"idToken,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	ClientID string `json:"clientId,omitempty"`
}

// CreateProjectRequest creates a project with generated code and defaults.
type CreateProjectRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	ClientName string `json:"clientName" validate:"required,max=200"`
	JobName    string `json:"jobName,omitempty" validate:"max=200"`
}

// GenerateCodeRequest previews the next project code for a name.
type GenerateCodeRequest struct {
	Name string `json:"name" validate:"required"`
}

// GenerateCodeResponse carries a generated project code.
type GenerateCodeResponse struct {
	ProjectCode string `json:"projectCode"`
}

// UpdateStatusRequest moves a project along the status scale.
type UpdateStatusRequest struct {
	Status ProjectStatus `json:"status" validate:"required,oneof=0 15 35 55 75 85 90 95 100"`
}

// VerifyFeedbackRequest confirms received feedback.
type VerifyFeedbackRequest struct {
	VerifiedBy string `json:"verifiedBy" validate:"required"`
}

// LinkFeedbackRequest attaches an orphan inbox item to a project.
type LinkFeedbackRequest struct {
	ProjectCode string `json:"projectCode" validate:"required"`
	Token       string `json:"token,omitempty"`
}

// CostPreviewRequest costs an unsaved project. Catalogs default to the stored ones.
type CostPreviewRequest struct {
	Project         Project           `json:"project"`
	FramingCatalog  []FramingMaterial `json:"framingCatalog,omitempty"`
	FinishesCatalog []FinishMaterial  `json:"finishesCatalog,omitempty"`
}

// SaveDatasetResponse reports a dataset write.
type SaveDatasetResponse struct {
	Dataset string `json:"dataset"`
	Count   int    `json:"count"`
}

// UpdateTrackingRequest sets closeout checklist flags. Nil fields are left unchanged.
type UpdateTrackingRequest struct {
	QCSignedOff       *bool `json:"qcSignedOff,omitempty"`
	DeliveryConfirmed *bool `json:"deliveryConfirmed,omitempty"`
	PaymentReceived   *bool `json:"paymentReceived,omitempty"`
}

// SaveLogoRequest stores the branding logo as a data URL.
type SaveLogoRequest struct {
	DataURL string `json:"dataUrl" validate:"required,startswith=data:"`
}
