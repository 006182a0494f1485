package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple title", "Riverside Distribution Center", "riverside-distribution-center"},
		{"punctuation and spacing", "  50,000 SF Warehouse - Dock High!  ", "50000-sf-warehouse-dock-high"},
		{"repeated separators", "Multi--Dash___Underscore", "multi-dash-underscore"},
		{"all caps", "ALL CAPS TITLE", "all-caps-title"},
		{"leading and trailing dashes", "-leading and trailing-", "leading-and-trailing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestGenerateSlug(t *testing.T) {
	existing := []string{"riverside-warehouse", "riverside-warehouse-1"}

	assert.Equal(t, "riverside-warehouse-2", GenerateSlug("Riverside Warehouse", existing))
	assert.Equal(t, "fresh-title", GenerateSlug("Fresh Title", existing))
	assert.Equal(t, "anything", GenerateSlug("Anything", nil))
}
