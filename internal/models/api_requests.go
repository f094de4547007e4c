package models

type CreateSessionRequest struct {
	Player string `json:"player" validate:"omitempty,max=12"`
}

type SelectItemRequest struct {
	ID string `json:"id" validate:"required,max=64"`
}

type SetCategoryRequest struct {
	Category string `json:"category" validate:"required,oneof=skills bosses activities total gim"`
}

type SetPlayerRequest struct {
	Player string `json:"player" validate:"required,max=12"`
}

type GroupResponse struct {
	Panels []GroupPanel `json:"panels"`
}

type PlayersResponse struct {
	Default string   `json:"default"`
	Players []string `json:"players"`
}
