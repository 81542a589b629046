package preorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/payproc-server/pkg/currency"
	"github.com/code-payments/payproc-server/pkg/pointer"
)

func TestRecordValidation(t *testing.T) {
	valid := Record{
		Ref:       "KGTWB",
		RefNN:     42,
		Amount:    "12.50",
		Currency:  currency.EUR,
		CreatedAt: time.Now(),
	}
	require.NoError(t, valid.Validate())

	for _, tc := range []struct {
		name   string
		modify func(r *Record)
	}{
		{"short ref", func(r *Record) { r.Ref = "KGTW" }},
		{"long ref", func(r *Record) { r.Ref = "KGTWBB" }},
		{"refnn too small", func(r *Record) { r.RefNN = 9 }},
		{"refnn too large", func(r *Record) { r.RefNN = 100 }},
		{"missing currency", func(r *Record) { r.Currency = "" }},
		{"missing amount", func(r *Record) { r.Amount = "" }},
		{"too many decimals", func(r *Record) { r.Amount = "1.005" }},
		{"empty meta", func(r *Record) { r.Meta = pointer.String("") }},
		{"payments without timestamp", func(r *Record) { r.NPaid = 1 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cloned := valid.Clone()
			tc.modify(&cloned)
			assert.Error(t, cloned.Validate())
		})
	}
}

func TestRecordClone(t *testing.T) {
	original := Record{
		Ref:       "KGTWB",
		RefNN:     42,
		Amount:    "12.50",
		Currency:  currency.EUR,
		Desc:      pointer.String("desc"),
		Email:     pointer.String("foo@example.com"),
		Meta:      pointer.String("a=b"),
		NPaid:     1,
		PaidAt:    pointer.Time(time.Now()),
		CreatedAt: time.Now(),
	}

	cloned := original.Clone()
	assert.Equal(t, original, cloned)
	assert.NotSame(t, original.Desc, cloned.Desc)
	assert.NotSame(t, original.PaidAt, cloned.PaidAt)

	var copied Record
	original.CopyTo(&copied)
	assert.Equal(t, original, copied)
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2014, 3, 7, 9, 4, 5, 999, time.FixedZone("CET", 3600))

	formatted := FormatTimestamp(ts)
	assert.Equal(t, "2014-03-07 08:04:05", formatted)

	parsed, err := ParseTimestamp(formatted)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts.Truncate(time.Second)))
	assert.Equal(t, time.UTC, parsed.Location())

	_, err = ParseTimestamp("2014-03-07T08:04:05Z")
	assert.Error(t, err)
}
