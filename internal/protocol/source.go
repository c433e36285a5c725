package protocol

import (
	"regexp"
	"strings"
)

// AttachmentSourceHints lists the keys legacy clients use to communicate the
// business-object classification of an upload, in lookup order.
var AttachmentSourceHints = []string{
	"attachmentSource",
	"source",
	"sourceType",
	"businessObject",
	"businessObjectType",
	"boType",
	"objectType",
	"classname",
	"className",
	"sapObjectType",
	"borObjectType",
}

// SourceLocationHints and DestinationLocationHints list alternate spellings of
// location attributes found in free-form metadata attribute bags.
var (
	SourceLocationHints      = []string{"sourceLocation", "sourceLoc", "sour_loc", "source", "fromLoc", "originLoc"}
	DestinationLocationHints = []string{"destinationLocation", "destinationLoc", "dest_loc", "destination", "toLoc", "targetLoc"}
)

var (
	leadingSlashes   = regexp.MustCompile(`^/+`)
	invalidSegRunes  = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	repeatedHyphens  = regexp.MustCompile(`-+`)
	edgeHyphenUnders = regexp.MustCompile(`^[-_]+|[-_]+$`)
)

// ToSourceFolderSegment normalizes a raw attachment-source hint into a storage
// folder segment. SAP TM freight order class names collapse to a stable
// "freight-order" segment; anything else is slugged. Returns "" when nothing
// usable remains.
func ToSourceFolderSegment(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	upper := strings.ToUpper(value)
	if strings.Contains(upper, "/SCMTMS/TOR") || strings.Contains(upper, "FREIGHT") {
		return "freight-order"
	}

	value = leadingSlashes.ReplaceAllString(value, "")
	value = strings.ReplaceAll(value, "/", "-")
	value = invalidSegRunes.ReplaceAllString(value, "-")
	value = repeatedHyphens.ReplaceAllString(value, "-")
	value = edgeHyphenUnders.ReplaceAllString(value, "")
	return strings.ToLower(value)
}

// AttachmentSourceHint extracts the first attachment-source hint from query
// parameters, body/multipart fields, then the dedicated request headers, and
// normalizes it into a folder segment.
func AttachmentSourceHint(req Request, headers map[string]string) string {
	raw := PickValue(req.Query, AttachmentSourceHints...)
	if raw == "" {
		raw = PickValue(req.BodyFields, AttachmentSourceHints...)
	}
	if raw == "" {
		raw = PickValue(headers, "x-attachment-source", "x-sap-object-type")
	}
	if raw == "" {
		return ""
	}
	return ToSourceFolderSegment(raw)
}
