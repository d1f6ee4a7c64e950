package dbmodels

import (
	"time"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/utils"
)

type DBProperty struct {
	Id              string    `db:"id"`
	OwnerFirstName  *string   `db:"owner_first_name"`
	OwnerLastName   *string   `db:"owner_last_name"`
	PropertyAddress string    `db:"property_address"`
	PropertyCity    string    `db:"property_city"`
	PropertyState   string    `db:"property_state"`
	PropertyZip     string    `db:"property_zip"`
	OfferAmount     float64   `db:"offer_amount"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

const TABLE_PROPERTIES = "properties"

// the columns of the address tuple unique index
var PropertyTupleColumns = []string{"property_address", "property_city", "property_state", "property_zip"}

var SelectPropertyColumn = utils.ColumnList[DBProperty]()

func AdaptProperty(db DBProperty) (models.PropertyRecord, error) {
	return models.PropertyRecord{
		Id:              db.Id,
		OwnerFirstName:  db.OwnerFirstName,
		OwnerLastName:   db.OwnerLastName,
		PropertyAddress: db.PropertyAddress,
		PropertyCity:    db.PropertyCity,
		PropertyState:   db.PropertyState,
		PropertyZip:     db.PropertyZip,
		OfferAmount:     db.OfferAmount,
		CreatedAt:       db.CreatedAt,
		UpdatedAt:       db.UpdatedAt,
	}, nil
}
