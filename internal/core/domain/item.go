package domain

import "errors"

var (
	ErrNotFound      = errors.New("item not found")
	ErrAlreadyExists = errors.New("item already exists")
)

type Item struct {
	Type  string `json:"type"`
	Price string `json:"price"`
	Brand string `json:"brand"`
	Year  string `json:"year"`
}

// ItemPatch carries a partial update. A nil field is left untouched; an empty
// string is written as-is.
type ItemPatch struct {
	Type  *string `json:"type,omitempty"`
	Price *string `json:"price,omitempty"`
	Brand *string `json:"brand,omitempty"`
	Year  *string `json:"year,omitempty"`
}

func (p ItemPatch) Apply(item Item) Item {
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Brand != nil {
		item.Brand = *p.Brand
	}
	if p.Year != nil {
		item.Year = *p.Year
	}
	return item
}

func (p ItemPatch) IsEmpty() bool {
	return p.Type == nil && p.Price == nil && p.Brand == nil && p.Year == nil
}

// StoredItem is an Item together with its identifier, as returned by listings.
type StoredItem struct {
	ID int `json:"id"`
	Item
}

func SeedItems() map[int]Item {
	return map[int]Item{
		1: {Type: "Sedan", Price: "30k", Brand: "Mercedes", Year: "2017"},
		2: {Type: "Suv", Price: "26k", Brand: "Honda", Year: "2018"},
		3: {Type: "Coupe", Price: "40k", Brand: "BMW", Year: "2020"},
	}
}
