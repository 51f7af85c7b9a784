package shipment

import "strings"

// Carrier-native tracking vocabularies differ per carrier; each carrier gets
// an explicit mapping table rather than ad hoc substring inspection. Codes
// absent from a table map to Unknown, which the webhook processor stores,
// logs and acknowledges without advancing any state.

func upsCodes() map[string]Status {
	return map[string]Status{
		"M":  LabelCreated, // billing information received
		"P":  InTransit,    // pickup scan
		"I":  InTransit,
		"O":  OutForDelivery,
		"D":  Delivered,
		"X":  Exception,
		"RS": Returned, // returned to shipper
	}
}

func fedexCodes() map[string]Status {
	return map[string]Status{
		"OC": LabelCreated, // order created
		"PU": InTransit,    // picked up
		"IT": InTransit,
		"AR": InTransit, // arrived at facility
		"OD": OutForDelivery,
		"DL": Delivered,
		"DE": Exception, // delivery exception
		"RT": Returned,
	}
}

func dhlCodes() map[string]Status {
	return map[string]Status{
		"pre-transit":      LabelCreated,
		"transit":          InTransit,
		"out-for-delivery": OutForDelivery,
		"delivered":        Delivered,
		"failure":          Exception,
		"returned":         Returned,
	}
}

func carrierTables() map[string]map[string]Status {
	return map[string]map[string]Status{
		"ups":   upsCodes(),
		"fedex": fedexCodes(),
		"dhl":   dhlCodes(),
	}
}

// MapCarrierStatus resolves a carrier-native status code to the internal
// status vocabulary. Both carrier and code lookups are case-insensitive.
// Unknown carriers and unknown codes resolve to Unknown, never to an error:
// the webhook boundary must acknowledge everything it receives.
func MapCarrierStatus(carrier, code string) Status {
	table, ok := carrierTables()[strings.ToLower(carrier)]
	if !ok {
		return Unknown
	}

	if status, ok := table[code]; ok {
		return status
	}
	if status, ok := table[strings.ToLower(code)]; ok {
		return status
	}
	if status, ok := table[strings.ToUpper(code)]; ok {
		return status
	}
	return Unknown
}

// KnownCarrier reports whether a mapping table exists for the carrier.
func KnownCarrier(carrier string) bool {
	_, ok := carrierTables()[strings.ToLower(carrier)]
	return ok
}
