package dtos

type CenterRequest struct {
	Name    string `json:"name" validate:"notblank"`
	Address string `json:"address"`
	Active  *bool  `json:"active,omitempty"`
}

type CenterDeleteResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	ReferencingSchedules int    `json:"referencingSchedules"`
}
