package service

import (
	"context"
	"fmt"
	"strings"

	"sapcs/internal/model"
	"sapcs/internal/protocol"
)

// MetadataItemResult is the per-item outcome of a metadata upsert.
type MetadataItemResult struct {
	DocumentID        string                            `json:"documentId"`
	Metadata          *model.AttachmentBusinessMetadata `json:"metadata"`
	ReplicatedToDrive bool                              `json:"replicatedToDrive"`
	RequestID         string                            `json:"requestId"`
}

// MetadataItemError reports one failed item; DocumentID may be empty when the
// item carried no identifier at all.
type MetadataItemError struct {
	DocumentID string `json:"documentId"`
	Error      string `json:"error"`
	RequestID  string `json:"requestId"`
}

// MetadataBatchResult aggregates a metadata request. BatchMode records
// whether the caller sent an explicit collection, which changes the response
// envelope even for a single item.
type MetadataBatchResult struct {
	RequestID      string               `json:"requestId"`
	TotalReceived  int                  `json:"totalReceived"`
	TotalSucceeded int                  `json:"totalSucceeded"`
	TotalFailed    int                  `json:"totalFailed"`
	Results        []MetadataItemResult `json:"results"`
	Errors         []MetadataItemError  `json:"errors"`
	BatchMode      bool                 `json:"-"`
}

// metadataItem is one parsed inbound metadata object.
type metadataItem struct {
	DocumentID          string
	BusinessObjectType  string
	BusinessObjectID    string
	SourceLocation      string
	DestinationLocation string
	OriginalFileName    string
	SourceSystem        string
	AttachmentSource    string
	Attributes          map[string]string
}

// pickRaw returns the first value among keys, matched case-insensitively.
func pickRaw(source map[string]any, keys ...string) any {
	for _, key := range keys {
		for k, v := range source {
			if strings.EqualFold(k, key) {
				return v
			}
		}
	}
	return nil
}

// pickString returns the first non-blank string value among keys.
func pickString(source map[string]any, keys ...string) string {
	for _, key := range keys {
		for k, v := range source {
			if !strings.EqualFold(k, key) {
				continue
			}
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func objectSlice(v any) ([]map[string]any, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if m, ok := asObject(entry); ok {
			items = append(items, m)
		}
	}
	return items, true
}

// parseMetadataItems accepts the four envelope shapes legacy integrations
// send: a single object, a bare array, {documents:[...]}, or {items:[...]}.
func parseMetadataItems(payload any) (items []metadataItem, batchMode bool) {
	var raws []map[string]any

	if list, ok := objectSlice(payload); ok {
		raws = list
		batchMode = true
	} else if obj, ok := asObject(payload); ok {
		if list, ok := objectSlice(pickRaw(obj, "documents")); ok {
			raws = list
			batchMode = true
		} else if list, ok := objectSlice(pickRaw(obj, "items")); ok {
			raws = list
			batchMode = true
		} else {
			raws = []map[string]any{obj}
		}
	}

	for _, raw := range raws {
		var attributes map[string]string
		rawAttrs, _ := asObject(pickRaw(raw, "attributes"))
		if rawAttrs != nil {
			attributes = make(map[string]string, len(rawAttrs))
			for k, v := range rawAttrs {
				attributes[k] = fmt.Sprintf("%v", v)
			}
		}

		sourceLocation := pickString(raw, "sourceLocation", "sourceLoc", "sour_loc")
		if sourceLocation == "" {
			sourceLocation = pickString(rawAttrs, protocol.SourceLocationHints...)
		}
		destinationLocation := pickString(raw, "destinationLocation", "destinationLoc", "dest_loc")
		if destinationLocation == "" {
			destinationLocation = pickString(rawAttrs, protocol.DestinationLocationHints...)
		}

		attachmentSource := pickString(raw, "attachmentSource")
		if attachmentSource == "" {
			attachmentSource = pickString(raw, "businessObjectType")
		}

		items = append(items, metadataItem{
			DocumentID:          pickString(raw, "documentId", "docId"),
			BusinessObjectType:  pickString(raw, "businessObjectType"),
			BusinessObjectID:    pickString(raw, "businessObjectId"),
			SourceLocation:      sourceLocation,
			DestinationLocation: destinationLocation,
			OriginalFileName:    pickString(raw, "originalFileName", "fileName"),
			SourceSystem:        pickString(raw, "sourceSystem"),
			AttachmentSource:    attachmentSource,
			Attributes:          attributes,
		})
	}
	return items, batchMode
}

// replicateStored retries replication for a document whose metadata just
// arrived, if its content is already in the blob store. This is how the
// upload-first flow converges with the metadata-first flow.
func (g *contentGateway) replicateStored(ctx context.Context, documentID string) (bool, error) {
	if !g.cfg.ReplicateToDrive() {
		return false, nil
	}
	payload, err := g.blob.Get(ctx, documentID)
	if err != nil {
		return false, err
	}
	if payload == nil {
		return false, nil
	}
	return g.replicateIfReady(ctx, documentID, payload.ContentType, payload.Bytes)
}

func (g *contentGateway) UpsertMetadata(ctx context.Context, payload any, requestID string) (*MetadataBatchResult, error) {
	items, batchMode := parseMetadataItems(payload)
	result := &MetadataBatchResult{RequestID: requestID, BatchMode: batchMode, TotalReceived: len(items)}
	if len(items) == 0 {
		return result, nil
	}

	replicationEnabled := g.cfg.ReplicateToDrive()

	for _, item := range items {
		if item.DocumentID == "" {
			result.Errors = append(result.Errors, MetadataItemError{
				Error:     ErrIDRequired.Error(),
				RequestID: requestID,
			})
			continue
		}

		if replicationEnabled && (item.BusinessObjectType == "" || item.BusinessObjectID == "" || item.OriginalFileName == "") {
			result.Errors = append(result.Errors, MetadataItemError{
				DocumentID: item.DocumentID,
				Error:      "businessObjectType, businessObjectId and originalFileName (or fileName) are required when drive replication is enabled",
				RequestID:  requestID,
			})
			continue
		}

		merged, err := g.meta.Upsert(ctx, &model.AttachmentBusinessMetadata{
			DocumentID:          item.DocumentID,
			BusinessObjectType:  item.BusinessObjectType,
			BusinessObjectID:    item.BusinessObjectID,
			SourceLocation:      item.SourceLocation,
			DestinationLocation: item.DestinationLocation,
			OriginalFileName:    item.OriginalFileName,
			SourceSystem:        item.SourceSystem,
			AttachmentSource:    item.AttachmentSource,
			Attributes:          item.Attributes,
		})
		if err != nil {
			result.Errors = append(result.Errors, MetadataItemError{
				DocumentID: item.DocumentID,
				Error:      err.Error(),
				RequestID:  requestID,
			})
			continue
		}

		replicated, err := g.replicateStored(ctx, item.DocumentID)
		if err != nil {
			result.Errors = append(result.Errors, MetadataItemError{
				DocumentID: item.DocumentID,
				Error:      err.Error(),
				RequestID:  requestID,
			})
			continue
		}

		logEvent("[SAP-METADATA]", map[string]any{
			"action":             "upsert",
			"requestId":          requestID,
			"documentId":         item.DocumentID,
			"businessObjectType": merged.BusinessObjectType,
			"businessObjectId":   merged.BusinessObjectID,
			"originalFileName":   merged.OriginalFileName,
			"replicatedToDrive":  replicated,
		})

		result.Results = append(result.Results, MetadataItemResult{
			DocumentID:        item.DocumentID,
			Metadata:          merged,
			ReplicatedToDrive: replicated,
			RequestID:         requestID,
		})
	}

	result.TotalSucceeded = len(result.Results)
	result.TotalFailed = len(result.Errors)
	return result, nil
}
