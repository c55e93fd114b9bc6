package nominatim

// searchResult is one element of the /search array. Nominatim encodes
// coordinates as strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResult struct {
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
	Error       string  `json:"error"`
}

type address struct {
	Suburb        string `json:"suburb"`
	Neighbourhood string `json:"neighbourhood"`
	Road          string `json:"road"`
}

// label picks the most specific locality name.
func (a address) label() string {
	switch {
	case a.Suburb != "":
		return a.Suburb
	case a.Neighbourhood != "":
		return a.Neighbourhood
	default:
		return a.Road
	}
}
