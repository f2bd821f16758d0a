package syncer

import (
	"regexp"
	"strings"

	"github.com/Triple-C-BE/wimood/internal/shopify"
	"github.com/Triple-C-BE/wimood/internal/wimood"
)

// Matches "Streetname 123" or "Streetname 456b": everything up to the last
// whitespace run, then a token starting with digits plus an optional
// non-space suffix.
var houseNumberPattern = regexp.MustCompile(`^(.+?)\s+(\d+\S*)$`)

// MapShippingAddress converts a Shopify shipping address to the Wimood
// customer_address shape. Shopify packs street and house number into
// address1 with an optional addition in address2; Wimood wants them split.
// When address1 has no trailing house number, address1 becomes the street
// and address2 is used as the house number verbatim. Missing fields map to
// empty strings, never null.
func MapShippingAddress(addr *shopify.ShippingAddress) wimood.CustomerAddress {
	street := addr.Address1
	housenumber := addr.Address2

	if m := houseNumberPattern.FindStringSubmatch(addr.Address1); m != nil {
		street = m[1]
		housenumber = m[2]
		if addr.Address2 != "" {
			housenumber = housenumber + " " + addr.Address2
		}
	}

	return wimood.CustomerAddress{
		Company:       addr.Company,
		ContactPerson: strings.TrimSpace(addr.FirstName + " " + addr.LastName),
		Street:        street,
		Housenumber:   housenumber,
		Postcode:      addr.Zip,
		City:          addr.City,
		Country:       addr.CountryCode,
	}
}
