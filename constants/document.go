package constants

// DocumentType classifies what the detection stage saw.
type DocumentType string

// Stable values (these exact strings appear on the wire).
const (
	DocThaiID        DocumentType = "thai_id"
	DocPassport      DocumentType = "passport"
	DocDriverLicense DocumentType = "driver_license"
	DocOther         DocumentType = "other"
	DocNone          DocumentType = "none"
)

var allDocumentTypes = []DocumentType{
	DocThaiID,
	DocPassport,
	DocDriverLicense,
	DocOther,
	DocNone,
}

// CanonicalDocumentType maps a raw detector label to a known type,
// defaulting to DocOther for anything unrecognized.
func CanonicalDocumentType(raw string) DocumentType {
	for _, t := range allDocumentTypes {
		if string(t) == raw {
			return t
		}
	}
	return DocOther
}

// DocumentTypeStrings returns the known types as plain strings, for prompt
// and schema construction.
func DocumentTypeStrings() []string {
	out := make([]string, 0, len(allDocumentTypes))
	for _, t := range allDocumentTypes {
		out = append(out, string(t))
	}
	return out
}
