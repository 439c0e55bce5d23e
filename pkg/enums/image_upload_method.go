package enums

import "fmt"

// ImageUploadMethod records how a product image was acquired.
type ImageUploadMethod string

const (
	ImageUploadMethodUpload ImageUploadMethod = "upload"
	ImageUploadMethodURL    ImageUploadMethod = "url"
)

var validImageUploadMethods = []ImageUploadMethod{
	ImageUploadMethodUpload,
	ImageUploadMethodURL,
}

// String implements fmt.Stringer.
func (i ImageUploadMethod) String() string {
	return string(i)
}

// IsValid reports whether the value is known.
func (i ImageUploadMethod) IsValid() bool {
	for _, candidate := range validImageUploadMethods {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseImageUploadMethod converts raw input into a ImageUploadMethod.
func ParseImageUploadMethod(value string) (ImageUploadMethod, error) {
	for _, candidate := range validImageUploadMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid image upload method %q", value)
}
