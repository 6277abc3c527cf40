package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotNil(t *testing.T) {
	require.NotPanics(t, func() { NotNil(1) })
	require.PanicsWithValue(t, "expected value to be not nil", func() { NotNil(nil) })
}

func TestNotEmptyStr(t *testing.T) {
	require.NotPanics(t, func() { NotEmptyStr("LOTO6_ALL.csv") })
	require.PanicsWithValue(t, "expected string to be non-empty", func() { NotEmptyStr("") })
}

func TestPositive(t *testing.T) {
	require.NotPanics(t, func() { Positive(3, "max attempts") })
	require.NotPanics(t, func() { Positive(time.Second, "timeout") })
	require.PanicsWithValue(t, "expected max attempts to be positive", func() { Positive(0, "max attempts") })
	require.PanicsWithValue(t, "expected timeout to be positive", func() { Positive(-time.Second, "timeout") })
}
