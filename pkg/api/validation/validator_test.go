// Daily3Albums Unlock
// Copyright (c) 2026 The Daily3Albums Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Daily3Albums Unlock.
//
// Daily3Albums Unlock is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Daily3Albums Unlock is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Daily3Albums Unlock.  If not, see <http://www.gnu.org/licenses/>.

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type overrideBody struct {
	Value *string `json:"value" validate:"required,debugtime"`
}

type shiftBody struct {
	Seconds int64  `json:"seconds" validate:"required,gte=-86400,lte=86400"`
	Every   string `json:"every" validate:"omitempty,duration"`
}

func TestValidateAndUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "valid", body: `{"value": "2024-03-20T13:00"}`},
		{name: "valid with seconds", body: `{"value": "2024-03-20T13:00:59"}`},
		{name: "empty body", body: "  ", wantErr: ErrMissingParams},
		{name: "not json", body: `{"value":`, wantErr: ErrInvalidParams},
		{name: "missing value", body: `{}`, wantMsg: "value is required"},
		{name: "bad format", body: `{"value": "20/03/2024"}`, wantMsg: `value must be YYYY-MM-DDTHH:MM[:SS], got "20/03/2024"`},
		{name: "out of range", body: `{"value": "2024-02-30T10:00"}`, wantMsg: "value must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var dest overrideBody
			err := ValidateAndUnmarshal([]byte(tt.body), &dest)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				var verr *Error
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Error(), tt.wantMsg)
			default:
				require.NoError(t, err)
				require.NotNil(t, dest.Value)
			}
		})
	}
}

func TestValidateShift(t *testing.T) {
	t.Parallel()

	var ok shiftBody
	require.NoError(t, ValidateAndUnmarshal([]byte(`{"seconds": -3600, "every": "1m"}`), &ok))
	assert.Equal(t, int64(-3600), ok.Seconds)

	var zero shiftBody
	err := ValidateAndUnmarshal([]byte(`{"seconds": 0}`), &zero)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "seconds", verr.Fields[0].Field)
	assert.Equal(t, "required", verr.Fields[0].Tag)

	var big shiftBody
	err = ValidateAndUnmarshal([]byte(`{"seconds": 100000, "every": "soon"}`), &big)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "seconds must be less than or equal to 86400; every must be a valid duration (e.g., 1h30m)", verr.Error())
}

func TestErrorWithoutFields(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "validation failed", (&Error{}).Error())
}
