package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEach_ToleratesFailures(t *testing.T) {
	var ran atomic.Int32
	errs := ForEach(context.Background(), []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, n int) error {
		ran.Add(1)
		if n%2 == 0 {
			return errors.New("even")
		}
		return nil
	})

	require.Len(t, errs, 5)
	assert.EqualValues(t, 5, ran.Load())
	assert.NoError(t, errs[0])
	assert.Error(t, errs[1])
	assert.NoError(t, errs[2])
	assert.Error(t, errs[3])
}

func TestForEach_Empty(t *testing.T) {
	assert.Empty(t, ForEach(context.Background(), []string(nil), 3, func(context.Context, string) error { return nil }))
}

func TestForEach_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errs := ForEach(ctx, []int{1, 2}, 1, func(context.Context, int) error { return nil })
	for _, err := range errs {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestFormatDateTpl(t *testing.T) {
	ts := time.Date(2023, 11, 10, 7, 5, 0, 0, time.UTC)
	assert.Equal(t, "2023-11-10 07:05", FormatDateTpl(ts, "YYYY-MM-DD hh:mm"))
	assert.Equal(t, "10/11/23", FormatDateTpl(ts, "DD/MM/YY"))
	assert.Equal(t, "", FormatDateTpl(time.Time{}, "YYYY"))
}
