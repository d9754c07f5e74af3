package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageRecord_Merge_FieldsOnly(t *testing.T) {
	rec := &StageRecord{
		Fields: map[string]string{FieldVendorEmail: "old@x.com", FieldInstructions: "keep"},
		Files:  []Attachment{{Name: "a", URL: "u-a"}},
	}

	dropped := rec.Merge(map[string]string{FieldVendorEmail: "new@x.com"}, nil, false)

	assert.Nil(t, dropped)
	assert.Equal(t, "new@x.com", rec.Field(FieldVendorEmail))
	assert.Equal(t, "keep", rec.Field(FieldInstructions))
	assert.Len(t, rec.Files, 1)
}

func TestStageRecord_Merge_ReplaceFiles(t *testing.T) {
	rec := &StageRecord{
		Files: []Attachment{{Name: "a", URL: "u-a"}, {Name: "b", URL: "u-b"}},
	}

	dropped := rec.Merge(nil, []Attachment{{Name: "b", URL: "u-b"}, {Name: "c", URL: "u-c"}}, true)

	assert.Equal(t, []Attachment{{Name: "a", URL: "u-a"}}, dropped)
	assert.Len(t, rec.Files, 2)
	assert.NotNil(t, rec.Fields)
}

func TestStageRecord_Field_Nil(t *testing.T) {
	var rec *StageRecord
	assert.Equal(t, "", rec.Field(FieldVendorEmail))
}

func TestDroppedAttachments(t *testing.T) {
	tests := []struct {
		name   string
		before []Attachment
		after  []Attachment
		want   []Attachment
	}{
		{"nothing before", nil, []Attachment{{URL: "x"}}, nil},
		{"all kept", []Attachment{{URL: "x"}}, []Attachment{{URL: "x"}}, nil},
		{"all dropped", []Attachment{{URL: "x"}, {URL: "y"}}, nil, []Attachment{{URL: "x"}, {URL: "y"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DroppedAttachments(tt.before, tt.after))
		})
	}
}
