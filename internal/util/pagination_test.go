package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		from, lim  int
	}{
		{name: "first page", page: 1, size: 10, from: 0, lim: 10},
		{name: "third page", page: 3, size: 10, from: 20, lim: 10},
		{name: "page below one", page: 0, size: 5, from: 0, lim: 5},
		{name: "size defaulted", page: 2, size: 0, from: 20, lim: 20},
		{name: "size capped", page: 1, size: 1000, from: 0, lim: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.lim, lim)
		})
	}
}
