package models

import "time"

type PropertyRecord struct {
	Id              string
	OwnerFirstName  *string
	OwnerLastName   *string
	PropertyAddress string
	PropertyCity    string
	PropertyState   string
	PropertyZip     string
	OfferAmount     float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PropertyTuple is the dedup key of a property. Two stored records never share it.
type PropertyTuple struct {
	Address string
	City    string
	State   string
	Zip     string
}

func (p PropertyRecord) Tuple() PropertyTuple {
	return PropertyTuple{
		Address: p.PropertyAddress,
		City:    p.PropertyCity,
		State:   p.PropertyState,
		Zip:     p.PropertyZip,
	}
}

type PropertyFilters struct {
	AddressPrefix string
	City          string
	State         string
	Zip           string
}

type PropertySearch struct {
	Filters  PropertyFilters
	OffsetId string
	Limit    int
}

type PropertyPage struct {
	Records     []PropertyRecord
	HasNextPage bool
}
