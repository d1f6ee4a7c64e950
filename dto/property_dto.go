package dto

import (
	"time"

	"github.com/guregu/null/v5"

	"github.com/offerlookup/offer-backend/models"
)

type Property struct {
	Id              string      `json:"id"`
	OwnerFirstName  null.String `json:"ownerFirstName"`
	OwnerLastName   null.String `json:"ownerLastName"`
	PropertyAddress string      `json:"propertyAddress"`
	PropertyCity    string      `json:"propertyCity"`
	PropertyState   string      `json:"propertyState"`
	PropertyZip     string      `json:"propertyZip"`
	OfferAmount     float64     `json:"offerAmount"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func AdaptPropertyDto(record models.PropertyRecord) Property {
	return Property{
		Id:              record.Id,
		OwnerFirstName:  null.StringFromPtr(record.OwnerFirstName),
		OwnerLastName:   null.StringFromPtr(record.OwnerLastName),
		PropertyAddress: record.PropertyAddress,
		PropertyCity:    record.PropertyCity,
		PropertyState:   record.PropertyState,
		PropertyZip:     record.PropertyZip,
		OfferAmount:     record.OfferAmount,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

type PropertySearchQuery struct {
	Address  string `form:"address"`
	City     string `form:"city"`
	State    string `form:"state" binding:"omitempty,len=2,alpha"`
	Zip      string `form:"zip" binding:"omitempty,max=10"`
	OffsetId string `form:"offset_id" binding:"omitempty,uuid"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

func AdaptPropertySearch(query PropertySearchQuery) models.PropertySearch {
	return models.PropertySearch{
		Filters: models.PropertyFilters{
			AddressPrefix: query.Address,
			City:          query.City,
			State:         query.State,
			Zip:           query.Zip,
		},
		OffsetId: query.OffsetId,
		Limit:    query.Limit,
	}
}

type PropertyPage struct {
	Properties []Property `json:"properties"`
	// id to pass as offset_id to get the next page, empty on the last page
	NextOffsetId string `json:"nextOffsetId,omitempty"`
}
