package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistItem_IsReservedBy(t *testing.T) {
	reserver := "user-1"

	tests := []struct {
		name string
		item WishlistItem
		user string
		want bool
	}{
		{
			name: "reserved by the same user",
			item: WishlistItem{IsReserved: true, ReservedBy: &reserver},
			user: "user-1",
			want: true,
		},
		{
			name: "reserved by another user",
			item: WishlistItem{IsReserved: true, ReservedBy: &reserver},
			user: "user-2",
			want: false,
		},
		{
			name: "not reserved",
			item: WishlistItem{},
			user: "user-1",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.IsReservedBy(tt.user))
		})
	}
}

func TestWishlistItem_ReservedByNotSerialized(t *testing.T) {
	reserver := "user-1"
	item := WishlistItem{
		ID:         uuid.New(),
		Name:       "headphones",
		IsReserved: true,
		ReservedBy: &reserver,
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "reserved_by")
	assert.Equal(t, true, raw["is_reserved"])
}
