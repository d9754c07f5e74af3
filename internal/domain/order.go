package domain

import "time"

// Stage is one of the four sequential phases of an order. The same values are
// used for the order status and for the kind of a stage record.
type Stage string

const (
	StageOrderDetails Stage = "order-details"
	StageSampling     Stage = "sampling"
	StageProduction   Stage = "production"
	StageShipment     Stage = "shipment"
)

var stageOrder = []Stage{StageOrderDetails, StageSampling, StageProduction, StageShipment}

// Stages returns the stages in pipeline order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Ordinal is the zero-based position of s in the pipeline, or -1 if s is unknown.
func (s Stage) Ordinal() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Stage) Valid() bool {
	return s.Ordinal() >= 0
}

func ParseStage(v string) (Stage, bool) {
	s := Stage(v)
	return s, s.Valid()
}

// Attachment names an uploaded file. Values are never mutated once created.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Order struct {
	ID              string
	ReferenceNumber string
	OrderName       string
	LabelType       string
	CustomerEmail   string
	OrderDetails    string
	Status          Stage
	Files           []Attachment
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Sampling   *StageRecord
	Production *StageRecord
	Shipment   *StageRecord
	EmailLog   []EmailEvent
}

const (
	FieldOrderName       = "orderName"
	FieldReferenceNumber = "referenceNumber"
	FieldLabelType       = "labelType"
	FieldCustomerEmail   = "customerEmail"
	FieldOrderDetails    = "orderDetails"
)

// Stage returns the record for kind. Order details live on the root document
// and are returned as a synthesized record.
func (o *Order) Stage(kind Stage) *StageRecord {
	switch kind {
	case StageOrderDetails:
		return o.DetailsRecord()
	case StageSampling:
		return o.Sampling
	case StageProduction:
		return o.Production
	case StageShipment:
		return o.Shipment
	}
	return nil
}

// SetStage attaches rec to the aggregate under its kind.
func (o *Order) SetStage(rec *StageRecord) {
	switch rec.Kind {
	case StageSampling:
		o.Sampling = rec
	case StageProduction:
		o.Production = rec
	case StageShipment:
		o.Shipment = rec
	}
}

func (o *Order) DetailsRecord() *StageRecord {
	return &StageRecord{
		OrderID: o.ID,
		Kind:    StageOrderDetails,
		Fields: map[string]string{
			FieldOrderName:       o.OrderName,
			FieldReferenceNumber: o.ReferenceNumber,
			FieldLabelType:       o.LabelType,
			FieldCustomerEmail:   o.CustomerEmail,
			FieldOrderDetails:    o.OrderDetails,
		},
		Files:     o.Files,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// AttachmentURLs lists every file URL reachable from the order root and its
// loaded stage records, without duplicates.
func (o *Order) AttachmentURLs() []string {
	seen := make(map[string]struct{})
	var urls []string
	add := func(files []Attachment) {
		for _, f := range files {
			if f.URL == "" {
				continue
			}
			if _, ok := seen[f.URL]; ok {
				continue
			}
			seen[f.URL] = struct{}{}
			urls = append(urls, f.URL)
		}
	}

	add(o.Files)
	for _, rec := range []*StageRecord{o.Sampling, o.Production, o.Shipment} {
		if rec != nil {
			add(rec.Files)
		}
	}
	return urls
}
