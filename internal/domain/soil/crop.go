package soil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CropType is the crop a soil reading is taken for
type CropType string

const (
	CropWheat     CropType = "Wheat"
	CropRice      CropType = "Rice"
	CropCorn      CropType = "Corn"
	CropSoybean   CropType = "Soybean"
	CropCotton    CropType = "Cotton"
	CropTomato    CropType = "Tomato"
	CropPotato    CropType = "Potato"
	CropSugarcane CropType = "Sugarcane"
)

// AllCropTypes lists the supported crops in display order
var AllCropTypes = []CropType{
	CropWheat, CropRice, CropCorn, CropSoybean,
	CropCotton, CropTomato, CropPotato, CropSugarcane,
}

// IsValid reports whether the crop type is supported
func (c CropType) IsValid() bool {
	for _, ct := range AllCropTypes {
		if c == ct {
			return true
		}
	}
	return false
}

// String returns the crop name
func (c CropType) String() string {
	return string(c)
}

// ParseCropType accepts any casing ("sugarcane", "WHEAT") and returns the canonical value.
// Unknown names are returned as-is so validation can report them.
func ParseCropType(s string) CropType {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	titled := CropType(cases.Title(language.English).String(s))
	if titled.IsValid() {
		return titled
	}
	return CropType(s)
}

// CropTypeNames returns the supported crop names
func CropTypeNames() []string {
	names := make([]string, len(AllCropTypes))
	for i, ct := range AllCropTypes {
		names[i] = string(ct)
	}
	return names
}
