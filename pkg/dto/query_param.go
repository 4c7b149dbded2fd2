package dto

type Filter struct {
	Status string `query:"status"`
}
