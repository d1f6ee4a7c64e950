package ingestion

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/offerlookup/offer-backend/pure_utils"
)

type recordField int

const (
	fieldOwnerFirstName recordField = iota
	fieldOwnerLastName
	fieldPropertyAddress
	fieldPropertyCity
	fieldPropertyState
	fieldPropertyZip
	fieldOfferAmount
)

var recordFieldNames = map[string]recordField{
	"owner_first_name": fieldOwnerFirstName,
	"owner_last_name":  fieldOwnerLastName,
	"property_address": fieldPropertyAddress,
	"property_city":    fieldPropertyCity,
	"property_state":   fieldPropertyState,
	"property_zip":     fieldPropertyZip,
	"offer_amount":     fieldOfferAmount,
}

// ColumnAliases lists, per record field, the header names accepted for it. Lookup ignores case,
// spaces, underscores and dashes.
type ColumnAliases map[recordField][]string

func DefaultColumnAliases() ColumnAliases {
	return ColumnAliases{
		fieldOwnerFirstName:  {"ownerFirstName", "first_name", "firstName"},
		fieldOwnerLastName:   {"ownerLastName", "last_name", "lastName"},
		fieldPropertyAddress: {"propertyAddress", "address"},
		fieldPropertyCity:    {"propertyCity", "city"},
		fieldPropertyState:   {"propertyState", "state"},
		fieldPropertyZip:     {"propertyZip", "zip", "zipcode", "postal_code"},
		fieldOfferAmount:     {"offerAmount", "offer", "offer_amount"},
	}
}

// LoadColumnAliases reads extra header aliases from a yaml file shaped like
//
//	property_zip: [zip5, "postal code"]
//	offer_amount: [bid]
//
// and appends them to the default aliases. An empty path returns the defaults.
func LoadColumnAliases(path string) (ColumnAliases, error) {
	aliases := DefaultColumnAliases()
	if path == "" {
		return aliases, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read column aliases file %s", path)
	}
	var extra map[string][]string
	if err := yaml.Unmarshal(content, &extra); err != nil {
		return nil, errors.Wrapf(err, "could not parse column aliases file %s", path)
	}
	for name, names := range extra {
		field, ok := recordFieldNames[name]
		if !ok {
			return nil, errors.Newf("unknown field %q in column aliases file %s", name, path)
		}
		aliases[field] = append(aliases[field], names...)
	}
	return aliases, nil
}

var headerSeparatorReplacer = strings.NewReplacer("_", "", "-", "", " ", "")

func canonicalHeader(header string) string {
	return pure_utils.FoldCase(headerSeparatorReplacer.Replace(strings.TrimSpace(header)))
}

// resolve returns, for each field, the header of the row that carries it. The first alias found wins.
func (a ColumnAliases) resolve(headers []string) map[recordField]string {
	byCanonical := make(map[string]string, len(headers))
	for _, h := range headers {
		c := canonicalHeader(h)
		if _, ok := byCanonical[c]; !ok {
			byCanonical[c] = h
		}
	}

	resolved := make(map[recordField]string, len(a))
	for field, names := range a {
		for _, name := range names {
			if header, ok := byCanonical[canonicalHeader(name)]; ok {
				resolved[field] = header
				break
			}
		}
	}
	return resolved
}
