package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipe/internal/domain"
)

func TestMerge_PreservesArgumentOrder(t *testing.T) {
	a := domain.Fragment{Invoices: []domain.RawInvoice{{SerialNumber: "A-1"}, {SerialNumber: "A-2"}}}
	b := domain.Fragment{Invoices: []domain.RawInvoice{{SerialNumber: "B-1"}}}

	out := Merge(a, b)
	require.Len(t, out.Invoices, 3)
	assert.Equal(t, "A-1", out.Invoices[0].SerialNumber)
	assert.Equal(t, "A-2", out.Invoices[1].SerialNumber)
	assert.Equal(t, "B-1", out.Invoices[2].SerialNumber)
}

func TestMerge_EmptyInputs(t *testing.T) {
	assert.True(t, Merge().Empty())
	assert.True(t, Merge(domain.Fragment{}, domain.Fragment{}).Empty())
}

func TestMerge_DoesNotShareSlices(t *testing.T) {
	a := domain.Fragment{Products: []domain.RawProduct{{Name: "Widget"}}}
	out := Merge(a)

	out.Products[0].Name = "changed"
	assert.Equal(t, "Widget", a.Products[0].Name)
}
