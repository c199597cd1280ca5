package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	type request struct {
		Name  string `json:"name" validate:"required,min=3,max=10"`
		Count int    `json:"count" validate:"min=1,max=100"`
		Mode  string `json:"mode" validate:"oneof=satellite cellular hybrid local"`
	}

	v := NewValidator()

	cases := []struct {
		desc string
		req  request
		err  bool
	}{
		{
			desc: "valid request",
			req:  request{Name: "buoy", Count: 5, Mode: "hybrid"},
		},
		{
			desc: "missing required field",
			req:  request{Count: 5, Mode: "hybrid"},
			err:  true,
		},
		{
			desc: "name too short",
			req:  request{Name: "ab", Count: 5, Mode: "local"},
			err:  true,
		},
		{
			desc: "name too long",
			req:  request{Name: "0123456789x", Count: 5, Mode: "local"},
			err:  true,
		},
		{
			desc: "count below minimum",
			req:  request{Name: "buoy", Count: 0, Mode: "local"},
			err:  true,
		},
		{
			desc: "count above maximum",
			req:  request{Name: "buoy", Count: 101, Mode: "local"},
			err:  true,
		},
		{
			desc: "mode not in set",
			req:  request{Name: "buoy", Count: 5, Mode: "pigeon"},
			err:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			err := v.Validate(tc.req)
			if tc.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNonStruct(t *testing.T) {
	v := NewValidator()
	assert.Error(t, v.Validate("not a struct"))
}
