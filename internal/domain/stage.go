package domain

import "time"

// Stage record field names used by the email templates.
const (
	FieldVendorEmail    = "vendorEmail"
	FieldInstructions   = "instructions"
	FieldQuantity       = "quantity"
	FieldDueDate        = "dueDate"
	FieldRecipientEmail = "recipientEmail"
	FieldCarrier        = "carrier"
	FieldTrackingNumber = "trackingNumber"
	FieldShipDate       = "shipDate"
	FieldNotes          = "notes"
)

// StageRecord is the editable form of one stage of one order.
type StageRecord struct {
	ID        string
	OrderID   string
	Kind      Stage
	Fields    map[string]string
	Files     []Attachment
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *StageRecord) Field(name string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Merge applies a shallow per-key overwrite of fields. When replaceFiles is set
// the file list is swapped for files and the attachments no longer listed are
// returned.
func (r *StageRecord) Merge(fields map[string]string, files []Attachment, replaceFiles bool) []Attachment {
	if r.Fields == nil {
		r.Fields = make(map[string]string, len(fields))
	}
	for k, v := range fields {
		r.Fields[k] = v
	}

	if !replaceFiles {
		return nil
	}

	dropped := DroppedAttachments(r.Files, files)
	r.Files = files
	return dropped
}

// DroppedAttachments returns the entries of before whose URL is absent from after.
func DroppedAttachments(before, after []Attachment) []Attachment {
	kept := make(map[string]struct{}, len(after))
	for _, a := range after {
		kept[a.URL] = struct{}{}
	}

	var dropped []Attachment
	for _, b := range before {
		if _, ok := kept[b.URL]; !ok {
			dropped = append(dropped, b)
		}
	}
	return dropped
}

// PendingDeletion is a stored object scheduled for removal after the record
// that referenced it was committed without it.
type PendingDeletion struct {
	ID        int64
	URL       string
	Attempts  int
	LastError string
	CreatedAt time.Time
}
