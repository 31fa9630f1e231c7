package random

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestLetters(t *testing.T) {
	tests := []struct {
		name    string
		length  uint
		wantErr bool
	}{
		{
			name:    "zero length",
			length:  0,
			wantErr: false,
		},
		{
			name:    "32 length",
			length:  32,
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Letters(tt.length)
			if (err != nil) != tt.wantErr {
				t.Errorf("Letters() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if uint(len(got)) != tt.length {
				t.Errorf("Letters() got length = %v, want length %v", len(got), tt.length)
			}
			for _, r := range got {
				require.Contains(t, string(allowedLetters), string(r))
			}
		})
	}
}

func TestKey(t *testing.T) {
	a, err := Key(32)
	require.NoError(t, err)
	require.Len(t, a, 32)
	b, err := Key(32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
