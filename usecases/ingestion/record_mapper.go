package ingestion

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/pure_utils"
	"github.com/offerlookup/offer-backend/repositories/clock"
)

type RecordMapper struct {
	aliases ColumnAliases
	clock   clock.Clock
}

func NewRecordMapper(aliases ColumnAliases, clock clock.Clock) RecordMapper {
	if aliases == nil {
		aliases = DefaultColumnAliases()
	}
	return RecordMapper{aliases: aliases, clock: clock}
}

// MapRow builds a canonical property record from a raw row. It never fails: missing values
// become empty, and an unusable offer becomes 0 with OfferCoerced set.
func (m RecordMapper) MapRow(row models.RawRow) models.MappedRecord {
	headers := make([]string, 0, len(row))
	for h := range row {
		headers = append(headers, h)
	}
	slices.Sort(headers)
	columns := m.aliases.resolve(headers)

	value := func(field recordField) string {
		header, ok := columns[field]
		if !ok {
			return ""
		}
		return row[header]
	}

	offer, coerced := parseOfferAmount(value(fieldOfferAmount))
	now := m.clock.Now()

	return models.MappedRecord{
		Record: models.PropertyRecord{
			OwnerFirstName:  pure_utils.NilIfEmpty(strings.TrimSpace(value(fieldOwnerFirstName))),
			OwnerLastName:   pure_utils.NilIfEmpty(strings.TrimSpace(value(fieldOwnerLastName))),
			PropertyAddress: pure_utils.NormalizeAddress(value(fieldPropertyAddress)),
			PropertyCity:    pure_utils.NormalizeCity(value(fieldPropertyCity)),
			PropertyState:   pure_utils.NormalizeState(value(fieldPropertyState)),
			PropertyZip:     pure_utils.NormalizeZip(value(fieldPropertyZip)),
			OfferAmount:     offer,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		OfferCoerced: coerced,
	}
}

var offerCleaner = strings.NewReplacer("$", "", ",", "")

// parseOfferAmount returns the offer and whether it had to be replaced with 0.
func parseOfferAmount(raw string) (float64, bool) {
	cleaned := offerCleaner.Replace(strings.TrimSpace(raw))
	offer, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(offer) || math.IsInf(offer, 0) || offer < 0 {
		return 0, true
	}
	return offer, false
}
