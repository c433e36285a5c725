// Package replication mirrors stored content into a hierarchical folder tree
// on the drive service, tagged by document id.
package replication

import (
	"fmt"
	"strings"
)

// DefaultPathTemplate is the folder layout used when no template is
// configured: business-object type, then object, then the Attachment leaf.
const DefaultPathTemplate = "{foType}/{foId}/Attachment"

// FolderPathInput carries the metadata a folder path is derived from. The
// derivation is deterministic: identical inputs always yield identical paths.
type FolderPathInput struct {
	BusinessObjectType  string
	BusinessObjectID    string
	SourceLocation      string
	DestinationLocation string
	TypeRemap           map[string]string
	PathTemplate        string
}

// normalizeFolderName guarantees a segment the drive API will accept: no
// trailing slashes, never empty.
func normalizeFolderName(value string) string {
	name := strings.TrimRight(strings.TrimSpace(value), "/")
	if name == "" {
		return "unknown"
	}
	return name
}

func stripLeadingZeros(value string) string {
	return strings.TrimLeft(strings.TrimSpace(value), "0")
}

// remapType resolves the business-object-type folder name: remap table first
// (exact key, then uppercase key, then the "default" entry), else the raw type
// with leading zeros stripped.
func remapType(boType string, remap map[string]string) string {
	if len(remap) > 0 {
		if v, ok := remap[boType]; ok && v != "" {
			return v
		}
		if v, ok := remap[strings.ToUpper(boType)]; ok && v != "" {
			return v
		}
		if v, ok := remap["default"]; ok && v != "" {
			return v
		}
	}
	return stripLeadingZeros(boType)
}

func locationSegment(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return "unknown"
}

// objectFolderName builds the composite business-object folder name. The
// source/destination suffix keeps two shipments sharing a raw id visually
// distinguishable without any deduplication logic.
func objectFolderName(in FolderPathInput) string {
	id := stripLeadingZeros(in.BusinessObjectID)
	if id == "" {
		id = "unknown"
	}
	return fmt.Sprintf("%s (%s - %s)", id, locationSegment(in.SourceLocation), locationSegment(in.DestinationLocation))
}

// ResolveFolderPath maps business metadata to the ordered folder segments of
// the mirror hierarchy. The result is never empty and contains no empty
// segments.
func ResolveFolderPath(in FolderPathInput) []string {
	typeFolder := normalizeFolderName(remapType(in.BusinessObjectType, in.TypeRemap))
	idFolder := normalizeFolderName(objectFolderName(in))
	fallback := []string{typeFolder, idFolder, "Attachment"}

	template := in.PathTemplate
	if template == "" {
		template = DefaultPathTemplate
	}

	var segments []string
	allUnknown := true
	for _, raw := range strings.Split(template, "/") {
		seg := strings.ReplaceAll(raw, "{foType}", typeFolder)
		seg = strings.ReplaceAll(seg, "{foId}", idFolder)
		seg = normalizeFolderName(seg)
		if seg != "unknown" {
			allUnknown = false
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 || allUnknown {
		return fallback
	}
	return segments
}
