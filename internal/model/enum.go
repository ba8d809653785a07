package model

// RegistrationStatus is the moderation state of a registration.
type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusApproved RegistrationStatus = "approved"
	StatusRejected RegistrationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// LocationType says whether an event happens online or at a venue.
type LocationType string

const (
	LocationOnline   LocationType = "online"
	LocationInPerson LocationType = "in_person"
)

// Valid reports whether t is a known location type.
func (t LocationType) Valid() bool {
	return t == LocationOnline || t == LocationInPerson
}

// City is a closed enumeration of the supported cities. The zero value
// CityUnset means no city was chosen (online events usually leave it unset).
type City string

const CityUnset City = ""

// cityLabels maps each known city to its Persian display name. The map
// doubles as the membership set for validation.
var cityLabels = map[City]string{
	"tehran":     "تهران",
	"mashhad":    "مشهد",
	"isfahan":    "اصفهان",
	"karaj":      "کرج",
	"shiraz":     "شیراز",
	"tabriz":     "تبریز",
	"qom":        "قم",
	"ahvaz":      "اهواز",
	"kermanshah": "کرمانشاه",
	"urmia":      "ارومیه",
	"rasht":      "رشت",
	"zahedan":    "زاهدان",
	"hamadan":    "همدان",
	"kerman":     "کرمان",
	"yazd":       "یزد",
}

// Valid reports whether c is a known city or unset.
func (c City) Valid() bool {
	if c == CityUnset {
		return true
	}
	_, ok := cityLabels[c]
	return ok
}

// Label returns the Persian display name, or "" when unset.
func (c City) Label() string { return cityLabels[c] }

// Category classifies an event. Unknown input defaults to CategoryOther
// at the validation boundary.
type Category string

const CategoryOther Category = "other"

var categoryLabels = map[Category]string{
	"tech":       "تکنولوژی",
	"business":   "کسب و کار",
	"art":        "هنر",
	"music":      "موسیقی",
	"sports":     "ورزش",
	"food":       "غذا",
	"education":  "آموزش",
	"networking": "نتورکینگ",
	"startup":    "استارتاپ",
	"health":     "سلامت",
	"other":      "سایر",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the Persian display name.
func (c Category) Label() string { return categoryLabels[c] }
