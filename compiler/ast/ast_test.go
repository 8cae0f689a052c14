package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptor(t *testing.T) {
	cases := []struct {
		text string
		desc Descriptor
	}{
		{"(II)I", Signature(Int, Int, Int)},
		{"(JJ)I", Signature(Int, Long, Long)},
		{"(J)J", Signature(Long, Long)},
		{"()V", Signature(Void)},
		{"(IZ)Z", Signature(Boolean, Int, Boolean)},
	}
	for _, c := range cases {
		t.Run(c.text, func(t *testing.T) {
			assert.Equal(t, c.text, c.desc.String())

			parsed, err := ParseDescriptor(c.text)
			require.NoError(t, err)
			assert.Equal(t, c.desc.String(), parsed.String())
			assert.Equal(t, c.desc.Result, parsed.Result)
			assert.Equal(t, len(c.desc.Params), len(parsed.Params))
		})
	}
}

func TestParseDescriptorErrors(t *testing.T) {
	for _, s := range []string{"", "II", "(I", "(I)", "(V)I", "(D)I", "(I)IX", "(I)Q"} {
		_, err := ParseDescriptor(s)
		var invalid *InvalidDescriptorError
		assert.ErrorAs(t, err, &invalid, s)
	}
}

func TestMethodReference(t *testing.T) {
	m := Method("java.lang.Integer", "divideUnsigned", Int, Int, Int)
	assert.Equal(t, "java.lang.Integer.divideUnsigned(II)I", m.String())

	call := Invoke(m, IntConst(7), &Variable{Kind: Int, Index: 1})
	assert.Equal(t, Int, call.ResultType())
	assert.Equal(t, Long, LongConst(1).ResultType())
}
