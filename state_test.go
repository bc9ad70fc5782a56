package chkconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/influxdata/chkconfig/kit/errors"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    bool
		wantErr bool
	}{
		{
			name: "on",
			in:   "on",
			want: true,
		},
		{
			name: "off",
			in:   "off",
		},
		{
			name: "mixed case on",
			in:   "On",
			want: true,
		},
		{
			name: "upper case off",
			in:   "OFF",
		},
		{
			name: "trailing newline",
			in:   "on\n",
			want: true,
		},
		{
			name: "on prefix with trailer",
			in:   "ONNO",
			want: true,
		},
		{
			name: "onward is on",
			in:   "onward",
			want: true,
		},
		{
			name: "off prefix with trailer",
			in:   "offline",
		},
		{
			name:    "empty",
			in:      "",
			wantErr: true,
		},
		{
			name:    "unrecognized keyword",
			in:      "enable",
			wantErr: true,
		},
		{
			name:    "bare o",
			in:      "o",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseState(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.EInvalid, errors.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatState(t *testing.T) {
	assert.Equal(t, "on", FormatState(true))
	assert.Equal(t, "off", FormatState(false))
}

func TestStateRoundTrip(t *testing.T) {
	for _, state := range []bool{true, false} {
		got, err := ParseState(FormatState(state))
		require.NoError(t, err)
		require.Equal(t, state, got)
	}
}
