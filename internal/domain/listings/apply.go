package listings

import (
	"fmt"
	"math"
)

// ApplyField writes one update-payload value onto the listing. Values arrive
// as decoded JSON, so numbers are float64. listing_type_code is resolved by
// the caller and must not reach here.
func ApplyField(l *Listing, name string, value interface{}) error {
	switch name {
	case FieldTitle:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s must be a string", name)
		}
		l.Title = s
	case FieldDescription:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s must be a string", name)
		}
		l.Description = s
	case FieldAddress:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s must be a string", name)
		}
		l.Address = s
	case FieldShowPhoneNumber:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s must be a boolean", name)
		}
		l.ShowPhoneNumber = b
	case FieldPrice:
		f, ok := toFloat(value)
		if !ok || f < 0 {
			return fmt.Errorf("%s must be a non-negative number", name)
		}
		l.Price = &f
	case FieldArea:
		f, ok := toFloat(value)
		if !ok || f < 0 {
			return fmt.Errorf("%s must be a non-negative number", name)
		}
		l.Area = &f
	case FieldLongitude:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%s must be a number", name)
		}
		l.Longitude = &f
	case FieldLatitude:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%s must be a number", name)
		}
		l.Latitude = &f
	case FieldBedrooms:
		n, ok := toInt(value)
		if !ok || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer", name)
		}
		l.Bedrooms = n
	case FieldBathrooms:
		n, ok := toInt(value)
		if !ok || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer", name)
		}
		l.Bathrooms = n
	case FieldCapacity:
		n, ok := toInt(value)
		if !ok || n < 1 {
			return fmt.Errorf("%s must be a positive integer", name)
		}
		l.Capacity = n
	case FieldProvinceCode:
		n, ok := toInt(value)
		if !ok {
			return fmt.Errorf("%s must be an integer", name)
		}
		l.ProvinceCode = &n
	case FieldWardCode:
		n, ok := toInt(value)
		if !ok {
			return fmt.Errorf("%s must be an integer", name)
		}
		l.WardCode = &n
	default:
		return fmt.Errorf("unknown field %q", name)
	}
	return nil
}

// CopyContentFields overwrites dst's content fields with src's. Status,
// timestamps, ownership and the parent link are deliberately left alone; the
// calling transaction owns those. Used in both directions: cloning a parent
// into a fresh edit draft, and merging an approved draft back.
func CopyContentFields(dst, src *Listing) {
	dst.ListingTypeID = src.ListingTypeID
	dst.Title = src.Title
	dst.Description = src.Description
	dst.Price = src.Price
	dst.Area = src.Area
	dst.Bedrooms = src.Bedrooms
	dst.Bathrooms = src.Bathrooms
	dst.Capacity = src.Capacity
	dst.Address = src.Address
	dst.ProvinceCode = src.ProvinceCode
	dst.WardCode = src.WardCode
	dst.Longitude = src.Longitude
	dst.Latitude = src.Latitude
	dst.ShowPhoneNumber = src.ShowPhoneNumber
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
